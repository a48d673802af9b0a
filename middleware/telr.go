package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"go.uber.org/zap"
)

var telrSignedFields = []string{
	"tran_store", "tran_type", "tran_class", "tran_test", "tran_ref",
	"tran_prevref", "tran_firstref", "tran_order", "tran_currency",
	"tran_amount", "tran_cartid", "tran_desc", "tran_status",
	"tran_authcode", "tran_authmessage",
}

// TelrSignature computes the tran_check value Telr sends with a transaction
// advice: SHA1 over the secret and the signed fields joined with ':'.
func TelrSignature(secret string, form func(string) string) string {
	parts := []string{secret}
	for _, f := range telrSignedFields {
		parts = append(parts, strings.TrimSpace(form(f)))
	}
	h := sha1.New()
	h.Write([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h.Sum(nil))
}

// TelrWebhookAuth verifies the Telr transaction advice signature. With no
// secret configured every advice is refused.
func TelrWebhookAuth(secret string, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Error(apperror.Forbidden("Telr webhook is not configured"))
			c.Abort()
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.Error(apperror.BadRequest("failed to parse form for signature verification"))
			c.Abort()
			return
		}

		providedCheck := c.PostForm("tran_check")
		if providedCheck == "" {
			c.Error(apperror.Forbidden("missing tran_check signature"))
			c.Abort()
			return
		}

		calculated := TelrSignature(secret, c.PostForm)
		if !strings.EqualFold(calculated, providedCheck) {
			logger.Warnw("rejected telr advice", "tran_ref", c.PostForm("tran_ref"), "ip", c.ClientIP())
			c.Error(apperror.Forbidden("invalid webhook signature"))
			c.Abort()
			return
		}

		c.Next()
	}
}
