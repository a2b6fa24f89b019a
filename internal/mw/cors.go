package mw

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows browser calls from origins, with credentials. Entries that
// are not http(s) URLs are ignored.
func CORS(origins []string) gin.HandlerFunc {
	valid := make([]string, 0, len(origins))
	for _, o := range origins {
		if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			valid = append(valid, strings.TrimRight(o, "/"))
			continue
		}
		log.Printf("ignoring allowed origin %q: must start with http:// or https://", o)
	}
	if len(valid) == 0 {
		valid = []string{"http://localhost:5173"}
	}

	return cors.New(cors.Config{
		AllowOrigins: valid,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
