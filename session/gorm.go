package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hupe1980/turnstream/core"
)

// sessionRecord is the table row of a persisted session. Turns are stored as
// one JSON document since a session is always loaded and saved as a whole.
type sessionRecord struct {
	ID        string    `gorm:"primaryKey"`
	Title     string    `gorm:"type:text"`
	TurnsJSON string    `gorm:"type:text"`
	Created   time.Time `gorm:"index"`
	Modified  time.Time `gorm:"index"`
}

func (sessionRecord) TableName() string { return "turnstream_sessions" }

// GormStore implements core.SessionStore on top of gorm. Use NewStore to
// open it for a given driver.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Save upserts the session row.
func (s *GormStore) Save(session *core.Session) error {
	if session == nil {
		return errors.New("nil session")
	}
	snap := session.Clone()
	turns, err := json.Marshal(snap.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}
	rec := sessionRecord{
		ID:        snap.ID,
		Title:     snap.Title,
		TurnsJSON: string(turns),
		Created:   snap.Created,
		Modified:  snap.Modified,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save session %s: %w", snap.ID, err)
	}
	return nil
}

// Load reads a session by id.
func (s *GormStore) Load(id string) (*core.Session, error) {
	var rec sessionRecord
	if err := s.db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	sess := core.NewSession(rec.ID)
	sess.Title = rec.Title
	sess.Created = rec.Created
	sess.Modified = rec.Modified
	if rec.TurnsJSON != "" {
		if err := json.Unmarshal([]byte(rec.TurnsJSON), &sess.Turns); err != nil {
			return nil, fmt.Errorf("failed to decode turns of session %s: %w", id, err)
		}
	}
	return sess, nil
}

// List returns all session ids, most recently modified first.
func (s *GormStore) List() ([]string, error) {
	var ids []string
	if err := s.db.Model(&sessionRecord{}).Order("modified DESC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Delete removes a session row.
func (s *GormStore) Delete(id string) error {
	if err := s.db.Where("id = ?", id).Delete(&sessionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
