// Package api is the HTTP shell over the mint, verify and wallet services.
// Handlers are thin: bind, delegate, map service errors to status codes.
package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/artledger/certmint/health"
	"github.com/artledger/certmint/mint"
	"github.com/artledger/certmint/verify"
	"github.com/artledger/certmint/wallet"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Router struct {
	mints    *mint.Service
	verifier *verify.Verifier
	wallets  *wallet.Store
	reporter *health.Reporter

	adminToken string
}

func NewRouter(
	mints *mint.Service,
	verifier *verify.Verifier,
	wallets *wallet.Store,
	reporter *health.Reporter,
	adminToken string,
) *gin.Engine {
	r := &Router{
		mints:      mints,
		verifier:   verifier,
		wallets:    wallets,
		reporter:   reporter,
		adminToken: adminToken,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	engine.GET("/healthz", r.getHealth)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/certificates/mint", r.mintCertificate)
		v1.GET("/certificates/verify", r.verifyCertificate)
		v1.POST("/licenses/mint", r.mintLicense)
		v1.POST("/transactions/retry", r.retryTransaction)
		v1.POST("/transactions/abandon", r.abandonTransaction)
		v1.GET("/transactions", r.listFailedTransactions)
	}

	admin := v1.Group("/admin", r.requireAdmin)
	{
		admin.POST("/wallets", r.createWallet)
		admin.GET("/wallets/:userId", r.getWallet)
		admin.DELETE("/wallets/:userId", r.deleteWallet)
	}

	return engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("[API] Request handled")
	}
}

// requireAdmin gates the wallet admin surface. With no token configured the
// whole admin group is disabled rather than left open.
func (r *Router) requireAdmin(c *gin.Context) {
	if r.adminToken == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "ADMIN_DISABLED",
			"message": "admin surface is not enabled",
		})
		return
	}
	token := c.GetHeader("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(r.adminToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "UNAUTHORIZED",
			"message": "invalid admin token",
		})
		return
	}
	c.Next()
}

func (r *Router) getHealth(c *gin.Context) {
	if r.reporter == nil {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
		return
	}
	snapshot := r.reporter.Snapshot()
	status := http.StatusOK
	if !snapshot.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, snapshot)
}
