package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avelar/homebox/auth"
	"github.com/avelar/homebox/hero"
	"github.com/avelar/homebox/internal/logutil"
)

const (
	flashCookieName = "admin_saved_flash"
	// maxDocPayload bounds the submitted start-quote JSON.
	maxDocPayload = 20000
	// maxSubtitlePayload bounds the raw subtitle before sanitizing
	// (multi-byte input may shrink a lot during normalization).
	maxSubtitlePayload = hero.SubtitleMaxLen * 3
)

func (s *Site) homePage(w http.ResponseWriter, r *http.Request) {
	body, err := s.cachedHomePage(r.Context())
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to serve home page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeWithETag(w, r, "text/html; charset=utf-8", body)
}

func (s *Site) heroJSON(w http.ResponseWriter, r *http.Request) {
	body, err := s.cachedHeroJSON(r.Context())
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to serve hero payload")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeWithETag(w, r, "application/json; charset=utf-8", body)
}

func (s *Site) loginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, r, http.StatusOK, "")
}

func (s *Site) loginAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, auth.GenericAuthError)
		return
	}
	address := clientAddress(r, s.cfg.TrustProxy)
	token, expiresAt, err := s.flow.Login(ctx, address, r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		s.renderLogin(w, r, http.StatusTooManyRequests, auth.RateLimitError)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.renderLogin(w, r, http.StatusBadRequest, auth.GenericAuthError)
		return
	case err != nil:
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Msg("Unable to process login")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, auth.SessionCookie(token, expiresAt, s.cfg.Production))
	http.Redirect(w, r, auth.ProtectedPrefix, http.StatusSeeOther)
}

func (s *Site) logoutAction(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		s.flow.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, auth.ClearSessionCookie())
	http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
}

func (s *Site) adminPage(w http.ResponseWriter, r *http.Request) {
	justSaved := false
	if cookie, err := r.Cookie(flashCookieName); err == nil && cookie.Value == "1" {
		justSaved = true
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     auth.ProtectedPrefix,
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	content, err := s.loadContent(r.Context())
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to load admin content")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.renderAdmin(w, r, http.StatusOK, adminView{
		StartQuoteDoc: content.DocJSON,
		Subtitle:      content.Subtitle,
		UpdatedAt:     content.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"),
		JustSaved:     justSaved,
	})
}

func (s *Site) adminSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.adminSaveError(w, r, "Invalid start quote content.")
		return
	}
	docRaw := r.PostFormValue("startQuoteDoc")
	subtitleRaw := r.PostFormValue("heroSubtitle")
	if len(docRaw) == 0 || len(docRaw) > maxDocPayload || len(subtitleRaw) > maxSubtitlePayload {
		s.adminSaveError(w, r, "Invalid start quote content.")
		return
	}
	if !json.Valid([]byte(docRaw)) {
		s.adminSaveError(w, r, "Start quote payload is not valid JSON.")
		return
	}
	doc, err := hero.Parse([]byte(docRaw))
	if err != nil {
		s.adminSaveError(w, r, "Start quote payload failed validation.")
		return
	}
	subtitle := hero.SanitizeSubtitle(subtitleRaw)
	if err := s.db.UpsertHomeContent(ctx, doc.JSON(), subtitle); err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Msg("Unable to save home content")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.invalidateContent()
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "1",
		Path:     auth.ProtectedPrefix,
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.Production,
	})
	http.Redirect(w, r, auth.ProtectedPrefix, http.StatusSeeOther)
}

type adminView struct {
	StartQuoteDoc string
	Subtitle      string
	UpdatedAt     string
	JustSaved     bool
	Error         string
}

func (s *Site) adminSaveError(w http.ResponseWriter, r *http.Request, msg string) {
	content, err := s.loadContent(r.Context())
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to load admin content")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.renderAdmin(w, r, http.StatusBadRequest, adminView{
		StartQuoteDoc: content.DocJSON,
		Subtitle:      content.Subtitle,
		UpdatedAt:     content.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"),
		Error:         msg,
	})
}

func (s *Site) renderAdmin(w http.ResponseWriter, r *http.Request, status int, view adminView) {
	identity, _ := auth.IdentityFrom(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := s.tmpl.ExecuteTemplate(w, "admin.html", map[string]interface{}{
		"Username":       identity.Username,
		"StartQuoteDoc":  view.StartQuoteDoc,
		"Subtitle":       view.Subtitle,
		"SubtitleMaxLen": hero.SubtitleMaxLen,
		"UpdatedAt":      view.UpdatedAt,
		"JustSaved":      view.JustSaved,
		"Error":          view.Error,
	})
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to render admin page")
	}
}

func (s *Site) renderLogin(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := s.tmpl.ExecuteTemplate(w, "login.html", map[string]interface{}{
		"Error": errMsg,
	})
	if err != nil {
		// too late for a status change, just record it
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to render login page")
	}
}
