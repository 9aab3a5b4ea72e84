package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/antonevtu/shortlink/internal/cfg"
	"github.com/antonevtu/shortlink/internal/db"
	"github.com/antonevtu/shortlink/internal/handlers"
	"github.com/antonevtu/shortlink/internal/repository"
	"github.com/antonevtu/shortlink/internal/shortener"
	"github.com/antonevtu/shortlink/internal/testutil"
)

type requestURL struct {
	URL string `json:"originalUrl"`
}
type responseURL struct {
	ShortURL string `json:"shortUrl"`
	ShortID  string `json:"shortId"`
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newConfig() cfg.Config {
	return cfg.Config{
		ServerAddress: ":8080",
		BaseURL:       "http://localhost:8080",
		CtxTimeout:    5,
		ShortIDLength: shortener.DefaultIDLength,
		MaxAttempts:   shortener.DefaultMaxAttempts,
		Dedup:         true,
	}
}

func BenchmarkMemory(b *testing.B) {
	repo, err := repository.New("", true)
	if err != nil {
		b.Fatal(err)
	}
	defer repo.Close()
	benchmarkStore(b, repo)
}

func BenchmarkPostgres(b *testing.B) {
	dsn := testutil.PostgresDSN(b)
	dbPool, err := db.New(context.Background(), dsn, true, discard)
	if err != nil {
		b.Fatal(err)
	}
	defer dbPool.Close()
	benchmarkStore(b, &dbPool)
}

func benchmarkStore(b *testing.B, store shortener.Store) {
	r := handlers.NewRouter(shortener.New(store), newConfig(), discard)
	ts := httptest.NewServer(r)
	defer ts.Close()

	b.ResetTimer() // сбрасываем все счётчики
	shortPaths := make([]string, 0, 10000)

	b.Run("shorten", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			b.StopTimer()

			// подготовка запроса
			longURL := "https://yandex.ru/" + uuid.NewString()
			reqAPI, err := json.Marshal(requestURL{URL: longURL})
			if err != nil {
				b.Fatal(err)
			}
			client := &http.Client{}
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/shorten", bytes.NewBuffer(reqAPI))
			if err != nil {
				b.Fatal(err)
			}

			b.StartTimer() // возобновляем таймер
			resp, err := client.Do(req)
			if err != nil {
				b.Fatal(err)
			}
			b.StopTimer() // останавливаем таймер

			// сохраняем сокращенный путь
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				b.Fatal(err)
			}
			_ = resp.Body.Close()
			res := responseURL{}
			if err = json.Unmarshal(body, &res); err != nil {
				b.Fatal(err)
			}
			u, err := url.Parse(res.ShortURL)
			if err != nil {
				b.Fatal(err)
			}
			shortPaths = append(shortPaths, u.Path)
		}
	})

	b.Run("expand", func(b *testing.B) {
		if len(shortPaths) == 0 {
			b.Skip("nothing shortened")
		}
		client := &http.Client{}
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		for i := 0; i < b.N; i++ {
			b.StopTimer()

			// подготовка запроса
			n := rand.Intn(len(shortPaths))
			req, err := http.NewRequest(http.MethodGet, ts.URL+shortPaths[n], nil)
			if err != nil {
				b.Fatal(err)
			}

			b.StartTimer() // возобновляем таймер
			resp, err := client.Do(req)
			if err != nil {
				b.Fatal(err)
			}
			_ = resp.Body.Close()
			b.StopTimer() // останавливаем таймер

			if resp.StatusCode != http.StatusFound {
				b.Fatal(errors.New("invalid status found"))
			}
		}
	})
}
