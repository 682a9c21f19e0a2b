// Package catalog manages shops, the category tree, products and their
// variants.
package catalog

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/marketplace/internal/database"
	"go.uber.org/zap"
)

type Service struct {
	db     *sql.DB
	log    *zap.Logger
	txOpts database.TxOptions
	newRef func() string
}

type Option func(*Service)

func WithTxOptions(opts database.TxOptions) Option { return func(s *Service) { s.txOpts = opts } }

// WithRefGenerator replaces the random suffix used in generated SKUs.
func WithRefGenerator(fn func() string) Option { return func(s *Service) { s.newRef = fn } }

func NewService(db *sql.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		log:    log.Named("catalog"),
		txOpts: database.DefaultTxOptions(),
		newRef: func() string {
			return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// skuPart is the first three letters of name with whitespace removed,
// upper-cased.
func skuPart(name string) string {
	compact := strings.ToUpper(strings.Join(strings.Fields(name), ""))
	runes := []rune(compact)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

// GenerateSKU builds SHOP-NAME-REF, e.g. "GAD-PHO-1A2B3C4D".
func GenerateSKU(productName, shopName, ref string) string {
	return skuPart(shopName) + "-" + skuPart(productName) + "-" + ref
}
