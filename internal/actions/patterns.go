package actions

import (
	"log/slog"
	"sync"

	"go.elara.ws/pcre"
)

type patterns struct {
	scroll   *pcre.Regexp
	click    *pcre.Regexp
	purchase *pcre.Regexp
	url      *pcre.Regexp
}

var (
	compiled    *patterns
	patternOnce sync.Once
)

func actionPattern(verb string) string {
	return `"action"\s*:\s*"` + verb + `"`
}

const urlPattern = `https?://[^\s)"'<>]+|/(?:pages|products|blogs|collections)/[^\s)"'<>]+`

// getPatterns compiles the fallback expressions once. A nil result disables
// the fallback layer.
func getPatterns() *patterns {
	patternOnce.Do(func() {
		sources := map[string]string{
			"scroll":   actionPattern(KindScroll),
			"click":    actionPattern(KindClick),
			"purchase": actionPattern(KindPurchase),
			"url":      urlPattern,
		}

		regexes := make(map[string]*pcre.Regexp, len(sources))
		for name, src := range sources {
			re, err := pcre.Compile(src)
			if err != nil {
				slog.Error("failed to compile action pattern", slog.String("pattern", name), slog.Any("error", err))
				return
			}
			regexes[name] = re
		}

		compiled = &patterns{
			scroll:   regexes["scroll"],
			click:    regexes["click"],
			purchase: regexes["purchase"],
			url:      regexes["url"],
		}
	})
	return compiled
}
