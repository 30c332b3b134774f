package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/notify"
	"github.com/farellandr/rifas/internal/services"
)

// Keys under which request dependencies are stored on the gin context.
const (
	DBKey            = "db"
	ServicesKey      = "services"
	NotifierKey      = "notifier"
	GatewayKey       = "payment_gateway"
	SignerKey        = "receipt_signer"
	UploadKey        = "upload_config"
	BaseURLKey       = "public_base_url"
	AdminIDKey       = "admin_id"
	AdminUsernameKey = "admin_username"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	svc := services.New(db)
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Set(ServicesKey, svc)
		c.Next()
	}
}

func GetServices(c *gin.Context) *services.Services {
	svc, exists := c.Get(ServicesKey)
	if !exists {
		return nil
	}
	return svc.(*services.Services)
}

func NotifierMiddleware(n notify.Notifier) gin.HandlerFunc {
	if n == nil {
		n = notify.Nop{}
	}
	return func(c *gin.Context) {
		c.Set(NotifierKey, n)
		c.Next()
	}
}

func GetNotifier(c *gin.Context) notify.Notifier {
	n, exists := c.Get(NotifierKey)
	if !exists {
		return notify.Nop{}
	}
	return n.(notify.Notifier)
}

// SiteMiddleware exposes the receipt signer, upload settings and public base
// URL to handlers.
func SiteMiddleware(signer *helpers.ReceiptSigner, upload helpers.UploadConfig, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SignerKey, signer)
		c.Set(UploadKey, upload)
		c.Set(BaseURLKey, baseURL)
		c.Next()
	}
}

func GetSigner(c *gin.Context) *helpers.ReceiptSigner {
	s, exists := c.Get(SignerKey)
	if !exists {
		return nil
	}
	return s.(*helpers.ReceiptSigner)
}

func GetUploadConfig(c *gin.Context) helpers.UploadConfig {
	u, exists := c.Get(UploadKey)
	if !exists {
		return helpers.DefaultImageUploadConfig
	}
	return u.(helpers.UploadConfig)
}

func GetBaseURL(c *gin.Context) string {
	return c.GetString(BaseURLKey)
}
