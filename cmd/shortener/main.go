//main realises service for shorten long url and returns.
//Long and short URLs are stored in Postgres, SQLite or in file-memory storage.
//When short url requested, it returns redirection to original long url and counts the click.
package main

import (
	"github.com/antonevtu/shortlink/internal/app"
)

func main() {
	app.Run()
}
