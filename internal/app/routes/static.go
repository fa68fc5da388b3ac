package routes

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/pkg/metrics"
	"github.com/yigit/altklausuren/web"
)

// SetupStatic serves the front end: the landing page at "/" and every other
// asset below /static.
func SetupStatic(router *gin.Engine, assets fs.FS) {
	router.GET("/", func(c *gin.Context) {
		page, err := fs.ReadFile(assets, web.IndexFile)
		if err != nil {
			c.String(http.StatusNotFound, "Nicht gefunden.")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	router.StaticFS("/static", http.FS(assets))
}

// SetupMetrics exposes the registry in Prometheus text format
func SetupMetrics(router *gin.Engine, m *metrics.Metrics) {
	router.GET("/metrics", gin.WrapH(m.Handler()))
}
