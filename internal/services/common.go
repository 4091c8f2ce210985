package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/recipedb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// quiet returns a session that does not log its SQL
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// lockForUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "mysql", "postgres":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// label turns a field path into the attribute name used in messages
func label(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return strings.ReplaceAll(field, "_", " ")
}

func msgRequired(field string) string {
	return fmt.Sprintf("The %s field is required.", label(field))
}

func msgMaxChars(field string, max int) string {
	return fmt.Sprintf("The %s field must not be greater than %d characters.", label(field), max)
}

func msgMin(field string, min int) string {
	return fmt.Sprintf("The %s field must be at least %d.", label(field), min)
}

func msgInvalidSelection(field string) string {
	return fmt.Sprintf("The selected %s is invalid.", label(field))
}

func msgTaken(field string) string {
	return fmt.Sprintf("The %s has already been taken.", label(field))
}

// wrongType reports a field sent with the wrong JSON type. kind reads as
// "a string", "an integer" and so on. Other rules skip such fields.
func wrongType[T any](errs types.FieldErrors, field string, v types.Optional[T], kind string) bool {
	if !v.Invalid {
		return false
	}
	errs.Add(field, fmt.Sprintf("The %s field must be %s.", label(field), kind))
	return true
}

// requireText validates a required string, returning the trimmed value
func requireText(errs types.FieldErrors, field string, v types.Optional[string], max int) (string, bool) {
	if wrongType(errs, field, v, "a string") {
		return "", false
	}
	if !v.Present() || strings.TrimSpace(v.Value) == "" {
		errs.Add(field, msgRequired(field))
		return "", false
	}
	s := strings.TrimSpace(v.Value)
	if max > 0 && utf8.RuneCountInString(s) > max {
		errs.Add(field, msgMaxChars(field, max))
		return "", false
	}
	return s, true
}

// optionalText validates a nullable string
func optionalText(errs types.FieldErrors, field string, v types.Optional[string], max int) {
	if wrongType(errs, field, v, "a string") {
		return
	}
	if v.Present() && max > 0 && utf8.RuneCountInString(v.Value) > max {
		errs.Add(field, msgMaxChars(field, max))
	}
}

// optionalMin validates a nullable integer lower bound
func optionalMin(errs types.FieldErrors, field string, v types.Optional[int], min int) {
	if wrongType(errs, field, v, "an integer") {
		return
	}
	if v.Present() && v.Value < min {
		errs.Add(field, msgMin(field, min))
	}
}

// existingIDs returns the subset of ids present in the model's table
func existingIDs(db *gorm.DB, model interface{}, ids []uint64) (map[uint64]bool, error) {
	found := make(map[uint64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var rows []uint64
	if err := quiet(db).Model(model).Where("id IN ?", ids).Pluck("id", &rows).Error; err != nil {
		return nil, err
	}
	for _, id := range rows {
		found[id] = true
	}
	return found, nil
}
