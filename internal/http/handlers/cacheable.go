package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// renderedJSON is a public response serialised once, so cache hits skip
// both marshalling and hashing.
type renderedJSON struct {
	ETag string
	Body []byte
}

func renderJSON(payload any) (renderedJSON, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return renderedJSON{}, err
	}

	sum := sha256.Sum256(b)
	return renderedJSON{ETag: `"` + hex.EncodeToString(sum[:16]) + `"`, Body: b}, nil
}

// writeCacheable answers 304 when If-None-Match already holds the ETag.
func writeCacheable(ctx *gin.Context, r renderedJSON, maxAge time.Duration) {
	ctx.Header("ETag", r.ETag)
	ctx.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))

	if etagMatches(ctx.GetHeader("If-None-Match"), r.ETag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", r.Body)
}

// etagMatches uses the weak comparison If-None-Match calls for.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}
	return false
}
