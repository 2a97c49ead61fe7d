package docstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores each collection in a table of the same name with one nullable
// column per field and a string primary key "id". Tables are created by
// database.Migrate.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func idEq(id string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: IDField}, Value: id}
}

func (s *SQL) Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error) {
	query := s.db.WithContext(ctx).Table(collection)
	for _, f := range filters {
		query = query.Where(clause.Eq{Column: clause.Column{Name: f.Field}, Value: f.Value})
	}

	var rows []map[string]any
	if err := query.Order(clause.OrderByColumn{Column: clause.Column{Name: IDField}}).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record(row)
	}
	return records, nil
}

func (s *SQL) GetByID(ctx context.Context, collection, id string) (Record, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(collection).Where(idEq(id)).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return Record(rows[0]), nil
}

func (s *SQL) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	id := NewID()
	row := map[string]any(rec.Clone())
	row[IDField] = id

	if err := s.db.WithContext(ctx).Table(collection).Create(row).Error; err != nil {
		return "", err
	}
	return id, nil
}

// Replace deletes and re-inserts the row in one transaction so that columns
// missing from rec end up NULL.
func (s *SQL) Replace(ctx context.Context, collection, id string, rec Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRow(tx, collection, id); err != nil {
			return err
		}

		row := map[string]any(rec.Clone())
		row[IDField] = id
		return tx.Table(collection).Create(row).Error
	})
}

func (s *SQL) Patch(ctx context.Context, collection, id string, fields Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(collection).Where(idEq(id)).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		// MySQL reports zero affected rows when values are unchanged, so the
		// existence check above is the source of truth.
		return tx.Table(collection).Where(idEq(id)).Updates(map[string]any(fields.Clone())).Error
	})
}

func (s *SQL) Delete(ctx context.Context, collection, id string) error {
	return deleteRow(s.db.WithContext(ctx), collection, id)
}

func deleteRow(db *gorm.DB, collection, id string) error {
	result := db.Exec("DELETE FROM ? WHERE ? = ?", clause.Table{Name: collection}, clause.Column{Name: IDField}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
