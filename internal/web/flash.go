package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	flashCookieName   = "workoutcompanion_flash"
	flashMaxAgeSecond = 60

	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash queues a message for the next page, keeping the ones already
// queued by this request or a previous redirect.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := append(readFlashes(r), Flash{Category: category, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		log.Errorf("add flash: %s", err)
		return
	}

	cookie := &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   flashMaxAgeSecond,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
	replaceRequestCookie(r, cookie)
}

// replaceRequestCookie makes the queued flashes visible to the rest of this request.
func replaceRequestCookie(r *http.Request, cookie *http.Cookie) {
	others := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range others {
		if c.Name != cookie.Name {
			r.AddCookie(c)
		}
	}
	r.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
}

// PopFlashes returns the queued messages and clears them.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
