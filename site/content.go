package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/avelar/homebox/auth"
	"github.com/avelar/homebox/hero"
)

const (
	homePageCacheKey = "home:page"
	heroJSONCacheKey = "home:hero"
)

type (
	pageContent struct {
		Doc       hero.Doc
		DocJSON   string
		Subtitle  string
		UpdatedAt time.Time
	}

	heroPayload struct {
		Subtitle string             `json:"subtitle"`
		Tokens   []hero.RenderToken `json:"tokens"`
	}
)

// loadContent returns the home content, creating the default row on
// first use and writing back any repairs the normalization made (a
// stored doc that no longer validates falls back to the default).
func (s *Site) loadContent(ctx context.Context) (pageContent, error) {
	row, err := s.db.GetHomeContent(ctx)
	if errors.Is(err, auth.ErrNotFound) {
		err = s.db.UpsertHomeContent(ctx, hero.DefaultDoc().JSON(), hero.DefaultSubtitle)
		if err != nil {
			return pageContent{}, err
		}
		row, err = s.db.GetHomeContent(ctx)
	}
	if err != nil {
		return pageContent{}, err
	}
	doc := hero.ParseOrDefault(row.StartQuoteDoc)
	docJSON := doc.JSON()
	subtitle := hero.SanitizeSubtitle(row.HeroSubtitle)
	if docJSON != row.StartQuoteDoc || subtitle != row.HeroSubtitle {
		if err := s.db.UpsertHomeContent(ctx, docJSON, subtitle); err != nil {
			return pageContent{}, err
		}
	}
	return pageContent{
		Doc:       doc,
		DocJSON:   docJSON,
		Subtitle:  subtitle,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *Site) cachedHomePage(ctx context.Context) ([]byte, error) {
	if body, err := s.cache.Get(homePageCacheKey); err == nil {
		return body, nil
	}
	content, err := s.loadContent(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = s.tmpl.ExecuteTemplate(&buf, "home.html", map[string]interface{}{
		"Tokens":   content.Doc.Tokens(),
		"Subtitle": content.Subtitle,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render home page, cause %w", err)
	}
	s.cache.Set(homePageCacheKey, buf.Bytes())
	return buf.Bytes(), nil
}

func (s *Site) cachedHeroJSON(ctx context.Context) ([]byte, error) {
	if body, err := s.cache.Get(heroJSONCacheKey); err == nil {
		return body, nil
	}
	content, err := s.loadContent(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(heroPayload{
		Subtitle: content.Subtitle,
		Tokens:   content.Doc.Tokens(),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode hero payload, cause %w", err)
	}
	s.cache.Set(heroJSONCacheKey, body)
	return body, nil
}

// invalidateContent drops the cached renders after a save, so the next
// read re-renders from the store.
func (s *Site) invalidateContent() {
	s.cache.Delete(homePageCacheKey)
	s.cache.Delete(heroJSONCacheKey)
}

// writeWithETag answers conditional requests with 304 when the body
// digest matches; otherwise writes the full body.
func writeWithETag(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
