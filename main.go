package main

import (
	_ "github.com/sciclub/clubsite/src/admintools"
	_ "github.com/sciclub/clubsite/src/devs3"
	_ "github.com/sciclub/clubsite/src/migration"
	"github.com/sciclub/clubsite/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
