package database

import (
	"gorm.io/gorm"
)

// TableStatus reports whether a model's table exists.
type TableStatus struct {
	Table  string
	Exists bool
}

// SchemaStatus lists every persistent model's table and whether it exists.
func SchemaStatus(db *gorm.DB) ([]TableStatus, error) {
	out := make([]TableStatus, 0, len(PersistentModels()))
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		out = append(out, TableStatus{
			Table:  stmt.Schema.Table,
			Exists: db.Migrator().HasTable(model),
		})
	}
	return out, nil
}

// Pending returns the tables that do not exist yet.
func Pending(statuses []TableStatus) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Exists {
			missing = append(missing, s.Table)
		}
	}
	return missing
}
