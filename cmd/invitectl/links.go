package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/invite-sh/server/internal/links"
	"github.com/invite-sh/server/internal/model"
)

func runLinks(path, provider string, out io.Writer) error {
	var src io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var ev model.Event
	if err := json.NewDecoder(src).Decode(&ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	var providers []links.Provider
	if provider != "" {
		p, err := links.ParseProvider(provider)
		if err != nil {
			return err
		}
		providers = []links.Provider{p}
	}

	urls, err := links.EncodeAll(ev, providers)
	if err != nil {
		return err
	}
	for _, p := range links.All() {
		if u, ok := urls[p]; ok {
			fmt.Fprintf(out, "%s\t%s\n", p, u)
		}
	}
	return nil
}
