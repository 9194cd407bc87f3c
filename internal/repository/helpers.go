package repository

import (
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// extractRecordKey returns the key part of a SurrealDB record ID, so that
// "basic_entity:abc" and RecordID{Table: "basic_entity", ID: "abc"} both
// yield "abc".
func extractRecordKey(id any) string {
	switch v := id.(type) {
	case string:
		if _, key, ok := strings.Cut(v, ":"); ok {
			return strings.Trim(key, "⟨⟩`")
		}
		return v
	case models.RecordID:
		return fmt.Sprint(v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprint(v.ID)
		}
	case map[string]any:
		// Handle {"tb": "table", "id": "xxx"} format
		if key, ok := v["id"]; ok {
			return fmt.Sprint(key)
		}
	}
	return ""
}

// extractCountValue converts various numeric types to int
func extractCountValue(v any) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}
