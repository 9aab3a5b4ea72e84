//main used for test loading shortener module.
//Loading using numberGoroutines clients and each client makes numberRequests requests
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

type shortPathsT struct {
	paths []string
	s     sync.Mutex
}

type requestURL struct {
	URL string `json:"url"`
}
type responseURL struct {
	ShortURL string `json:"shortUrl"`
}

var shortPaths shortPathsT

func main() {
	target := flag.String("u", "http://localhost:8080", "shortener address")
	numberGoroutines := flag.Int("g", 300, "number of concurrent clients of each kind")
	numberRequests := flag.Int("n", 100, "requests per client")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	shortPaths.paths = make([]string, 0, 1000)
	var n sync.WaitGroup
	tic := time.Now()

	for g := 0; g < *numberGoroutines; g++ {
		n.Add(1)
		go shorten(&n, *target, *numberRequests, logger)
	}

	for g := 0; g < *numberGoroutines; g++ {
		n.Add(1)
		go expand(&n, *target, *numberRequests, logger)
	}

	n.Wait()
	logger.Info("done", "elapsed", time.Since(tic).String(), "links", len(shortPaths.paths))
}

func shorten(n *sync.WaitGroup, target string, numberRequests int, logger *slog.Logger) {
	defer n.Done()
	httpClient := &http.Client{}
	for i := 0; i < numberRequests; i++ {

		// подготовка запроса
		longURL := "https://yandex.ru/" + uuid.NewString()
		reqAPI, err := json.Marshal(requestURL{URL: longURL})
		if err != nil {
			panic(err)
		}

		resp, err := httpClient.Post(target+"/api/shorten", "application/json", bytes.NewBuffer(reqAPI))
		if err != nil {
			panic(err)
		}

		// сохраняем сокращенный путь
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			panic(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			logger.Warn("shorten failed", "status", resp.StatusCode, "body", string(body))
			continue
		}
		res := responseURL{}
		err = json.Unmarshal(body, &res)
		if err != nil {
			panic(err)
		}
		u, err := url.Parse(res.ShortURL)
		if err != nil {
			panic(err)
		}
		shortPaths.s.Lock()
		shortPaths.paths = append(shortPaths.paths, u.Path)
		shortPaths.s.Unlock()

		logger.Debug("shorten request done", "path", u.Path)
	}
}

func expand(n *sync.WaitGroup, target string, numberRequests int, logger *slog.Logger) {
	defer n.Done()
	counter := 0
	httpClient := &http.Client{}
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	for counter < numberRequests {

		// выборка короткого пути
		shortPaths.s.Lock()
		var shortPath string
		if len(shortPaths.paths) > 10 {
			n1 := rand.Intn(len(shortPaths.paths))
			shortPath = shortPaths.paths[n1]
			shortPaths.s.Unlock()
		} else {
			shortPaths.s.Unlock()
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// запрос
		resp, err := httpClient.Get(target + shortPath)
		if err != nil {
			panic(err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			panic(errors.New("invalid status found"))
		}

		counter++
		logger.Debug("expand request done", "path", shortPath)
	}
}
