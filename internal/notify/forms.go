package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var formContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// LoadForms reads the intake form documents from dir. Only PDF and Word
// files are picked up. A missing or empty directory yields no forms, not
// an error, so clinics without digital forms still get confirmations.
func LoadForms(dir string) ([]Attachment, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("notify: failed to read forms dir %s: %w", dir, err)
	}

	var forms []Attachment
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		contentType, ok := formContentTypes[ext]
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("notify: failed to read form %s: %w", entry.Name(), err)
		}
		forms = append(forms, Attachment{
			Filename:    entry.Name(),
			ContentType: contentType,
			Data:        data,
		})
	}
	return forms, nil
}
