package server

import (
	"net/http"
)

// StaticHandler writes tpl for every request regardless of method, path, headers or body.
func StaticHandler(tpl ResponseTemplate) http.Handler {
	tpl = NewResponseTemplate(tpl.StatusCode, tpl.Header, tpl.Body)
	status := statusOf(tpl)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, vv := range tpl.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(status)
		if len(tpl.Body) > 0 {
			_, _ = w.Write(tpl.Body)
		}
	})
}

func statusOf(tpl ResponseTemplate) int {
	if tpl.StatusCode == 0 {
		return http.StatusOK
	}
	return tpl.StatusCode
}
