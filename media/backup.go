package media

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Backup copies the uploads directory once a day at a fixed hour and prunes old copies.
type Backup struct {
	SrcDir    string
	BackupDir string
	Retention time.Duration
	Hour      int
	Log       logrus.FieldLogger

	now func() time.Time
}

// Run blocks until ctx is cancelled.
func (b *Backup) Run(ctx context.Context) error {
	for {
		next := b.nextRun()
		b.Log.WithField("at", next.Format("2006-01-02 15:04:05")).Info("next uploads backup scheduled")

		timer := time.NewTimer(next.Sub(b.clock()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if dest, err := b.RunOnce(); err != nil {
			b.Log.WithError(err).Error("uploads backup failed")
		} else {
			b.Log.WithField("dest", dest).Info("uploads backed up")
		}
		b.cleanupOldBackups()
	}
}

// RunOnce copies the uploads directory into a timestamped folder and returns its path.
func (b *Backup) RunOnce() (string, error) {
	dest := filepath.Join(b.BackupDir, b.clock().Format("2006-01-02_15-04-05"))
	return dest, copyDir(b.SrcDir, dest)
}

func (b *Backup) nextRun() time.Time {
	now := b.clock()
	next := time.Date(now.Year(), now.Month(), now.Day(), b.Hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func (b *Backup) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

// copyDir recursively copies a folder
func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
		} else if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

// cleanupOldBackups removes backup folders older than the retention period.
func (b *Backup) cleanupOldBackups() {
	entries, err := os.ReadDir(b.BackupDir)
	if err != nil {
		b.Log.WithError(err).Error("read backup directory")
		return
	}

	cutoff := b.clock().Add(-b.Retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := filepath.Join(b.BackupDir, entry.Name())
		info, err := os.Stat(folder)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folder); err != nil {
				b.Log.WithError(err).WithField("folder", folder).Warn("remove old backup")
			} else {
				b.Log.WithField("folder", folder).Info("removed old backup")
			}
		}
	}
}
