// Package archive moves learner rows from live host tables into their recompletion archive
// tables. Every function expects to run inside the caller's transaction.
package archive

import (
	"fmt"

	"gorm.io/gorm"
)

const batchSize = 200

// Rows describes one live table: which rows belong to the target, how to identify them
// and how each becomes an archive row.
type Rows[L any, A any] struct {
	Scope   func(tx *gorm.DB) *gorm.DB
	ID      func(row L) uint
	Archive func(row L) A
}

// Children describes a child table whose rows point at a parent through ParentColumn.
type Children[C any, CA any] struct {
	ParentColumn string
	ID           func(row C) uint
	Parent       func(row C) uint
	// Archive receives the archive id of the parent, never the live one.
	Archive func(row C, archivedParentID uint) CA
}

// Move deletes the rows selected by rows.Scope. When archive is set, the rows are copied
// first and only the copied ids are deleted.
func Move[L any, A any](tx *gorm.DB, archive bool, rows Rows[L, A]) (int64, error) {
	if !archive {
		res := rows.Scope(tx).Delete(new(L))
		if res.Error != nil {
			return 0, fmt.Errorf("delete %T: %w", *new(L), res.Error)
		}
		return res.RowsAffected, nil
	}

	var live []L
	if err := rows.Scope(tx).Find(&live).Error; err != nil {
		return 0, fmt.Errorf("select %T: %w", *new(L), err)
	}
	if len(live) == 0 {
		return 0, nil
	}

	archived := make([]A, 0, len(live))
	ids := make([]uint, 0, len(live))
	for _, row := range live {
		archived = append(archived, rows.Archive(row))
		ids = append(ids, rows.ID(row))
	}

	if err := tx.CreateInBatches(&archived, batchSize).Error; err != nil {
		return 0, fmt.Errorf("archive %T: %w", *new(L), err)
	}

	res := tx.Delete(new(L), ids)
	if res.Error != nil {
		return 0, fmt.Errorf("delete %T: %w", *new(L), res.Error)
	}
	return res.RowsAffected, nil
}

// MoveTree handles a parent table with dependent children. Parents are archived one by one
// to learn their new ids, then children are archived pointing at those ids.
func MoveTree[P any, PA any, C any, CA any](
	tx *gorm.DB,
	archive bool,
	parents Rows[P, PA],
	archivedID func(row *PA) uint,
	children Children[C, CA],
) (int64, error) {
	var live []P
	if err := parents.Scope(tx).Find(&live).Error; err != nil {
		return 0, fmt.Errorf("select %T: %w", *new(P), err)
	}
	if len(live) == 0 {
		return 0, nil
	}

	parentIDs := make([]uint, 0, len(live))
	for _, row := range live {
		parentIDs = append(parentIDs, parents.ID(row))
	}

	var kids []C
	if err := tx.Where(children.ParentColumn+" IN ?", parentIDs).Find(&kids).Error; err != nil {
		return 0, fmt.Errorf("select %T: %w", *new(C), err)
	}

	if archive {
		newIDs := make(map[uint]uint, len(live))
		for _, row := range live {
			a := parents.Archive(row)
			if err := tx.Create(&a).Error; err != nil {
				return 0, fmt.Errorf("archive %T: %w", row, err)
			}
			newIDs[parents.ID(row)] = archivedID(&a)
		}

		if len(kids) > 0 {
			archivedKids := make([]CA, 0, len(kids))
			for _, kid := range kids {
				parentID, ok := newIDs[children.Parent(kid)]
				if !ok {
					return 0, fmt.Errorf("archive %T: parent %d not archived", kid, children.Parent(kid))
				}
				archivedKids = append(archivedKids, children.Archive(kid, parentID))
			}
			if err := tx.CreateInBatches(&archivedKids, batchSize).Error; err != nil {
				return 0, fmt.Errorf("archive %T: %w", *new(C), err)
			}
		}
	}

	if len(kids) > 0 {
		kidIDs := make([]uint, 0, len(kids))
		for _, kid := range kids {
			kidIDs = append(kidIDs, children.ID(kid))
		}
		if err := tx.Delete(new(C), kidIDs).Error; err != nil {
			return 0, fmt.Errorf("delete %T: %w", *new(C), err)
		}
	}

	res := tx.Delete(new(P), parentIDs)
	if res.Error != nil {
		return 0, fmt.Errorf("delete %T: %w", *new(P), res.Error)
	}
	return res.RowsAffected, nil
}
