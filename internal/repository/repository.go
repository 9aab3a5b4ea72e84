//Package repository implements in-memory short link storage.
//Implements shortener.Store. Every created or updated record is appended to a backup
//file as one JSON line; on start the file is replayed, later lines win.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/antonevtu/shortlink/internal/shortener"
)

//Repository is in-memory repository, based on maps, with backup file writer for changed records
type Repository struct {
	storage     storageT
	byURL       map[string]string
	uniqueURL   bool
	storageLock sync.Mutex
	fileWriter  fileWriterT
}

type storageT map[string]shortener.ShortLink

type fileWriterT struct {
	file    *os.File
	encoder *json.Encoder
}

//New returns new in-memory repository, restored from text file.
//Empty fileName disables the backup. uniqueURL makes Create reject a second record with the same original URL
func New(fileName string, uniqueURL bool) (*Repository, error) {
	repository := Repository{
		storage:   make(storageT, 100),
		byURL:     make(map[string]string, 100),
		uniqueURL: uniqueURL,
	}
	if fileName == "" {
		return &repository, nil
	}

	err := repository.restoreFromFile(fileName)
	if err != nil {
		return &repository, err
	}

	err = repository.fileWriter.new(fileName)
	if err != nil {
		return &repository, err
	}
	return &repository, nil
}

func (fw *fileWriterT) new(filename string) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	*fw = fileWriterT{
		file:    file,
		encoder: json.NewEncoder(file),
	}
	return nil
}

func (fw *fileWriterT) write(link shortener.ShortLink) error {
	if fw.encoder == nil {
		return nil
	}
	return fw.encoder.Encode(&link)
}

func (r *Repository) restoreFromFile(fileName string) error {
	file, err := os.OpenFile(fileName, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	decoder := json.NewDecoder(file)
	for {
		var link shortener.ShortLink
		err = decoder.Decode(&link)
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		r.storage[link.ShortID] = link
		if _, ok := r.byURL[link.OriginalURL]; !ok {
			r.byURL[link.OriginalURL] = link.ShortID
		}
	}
}

func (r *Repository) Create(_ context.Context, link shortener.ShortLink) error {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()
	if _, ok := r.storage[link.ShortID]; ok {
		return shortener.ErrIDTaken
	}
	if _, ok := r.byURL[link.OriginalURL]; ok && r.uniqueURL {
		return shortener.ErrURLTaken
	}
	r.storage[link.ShortID] = link
	if _, ok := r.byURL[link.OriginalURL]; !ok {
		r.byURL[link.OriginalURL] = link.ShortID
	}
	return r.fileWriter.write(link)
}

func (r *Repository) FindByShortID(_ context.Context, shortID string) (shortener.ShortLink, error) {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()
	link, ok := r.storage[shortID]
	if !ok {
		return shortener.ShortLink{}, shortener.ErrNotFound
	}
	return link, nil
}

func (r *Repository) FindByURL(_ context.Context, originalURL string) (shortener.ShortLink, error) {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()
	shortID, ok := r.byURL[originalURL]
	if !ok {
		return shortener.ShortLink{}, shortener.ErrNotFound
	}
	return r.storage[shortID], nil
}

func (r *Repository) RecordAccess(_ context.Context, shortID string, at time.Time) error {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()
	link, ok := r.storage[shortID]
	if !ok {
		return shortener.ErrNotFound
	}
	link.Clicks++
	if link.LastAccessed == nil || at.After(*link.LastAccessed) {
		t := at
		link.LastAccessed = &t
	}
	r.storage[shortID] = link
	return r.fileWriter.write(link)
}

//Len returns number of stored records
func (r *Repository) Len() int {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()
	return len(r.storage)
}

func (r *Repository) Ping(_ context.Context) error {
	if r.fileWriter.file == nil {
		return nil
	}
	_, err := r.fileWriter.file.Stat()
	if err != nil {
		return fmt.Errorf("backup file unavailable: %w", err)
	}
	return nil
}

func (r *Repository) Close() {
	if r.fileWriter.file != nil {
		_ = r.fileWriter.file.Close()
	}
}
