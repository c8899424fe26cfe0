// Package seed loads reference languages and optional demo content.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"polyglot/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed languages.yml
var languagesYAML []byte

type languageFile struct {
	Languages []string `yaml:"languages"`
}

// LanguageNames returns the embedded language list, lower-cased and de-duplicated.
func LanguageNames() ([]string, error) {
	var f languageFile
	if err := yaml.Unmarshal(languagesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse languages.yml: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Languages))
	names := make([]string, 0, len(f.Languages))
	for _, n := range f.Languages {
		n = strings.ToLower(strings.TrimSpace(n))
		if _, dup := seen[n]; n == "" || dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names, nil
}

// Languages inserts every embedded language that is not present yet.
// Running it again is a no-op.
func Languages(ctx context.Context, db *gorm.DB) (int64, error) {
	names, err := LanguageNames()
	if err != nil {
		return 0, err
	}
	rows := make([]models.Language, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.Language{Name: n})
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("seed languages: %w", res.Error)
	}
	return res.RowsAffected, nil
}
