package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type grant struct {
	UserID    string `yaml:"user_id"`
	Credits   int64  `yaml:"credits"`
	Reference string `yaml:"reference"`
	Reason    string `yaml:"reason"`
}

func loadGrants(path string) ([]grant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grant file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	var grants []grant
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		grants, err = parseGrantsYAML(f)
	default:
		grants, err = parseGrantsCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	seen := make(map[string]int)
	for i := range grants {
		if grants[i].Reference == "" {
			grants[i].Reference = grants[i].defaultReference(base, seen)
		}
	}
	return grants, nil
}

// defaultReference derives a reference from the row's content, so editing
// other rows of the file never changes it. Identical rows are numbered in
// file order.
func (g grant) defaultReference(file string, seen map[string]int) string {
	content := fmt.Sprintf("%s\x00%s\x00%d\x00%s", file, g.UserID, g.Credits, g.Reason)
	seen[content]++
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s\x00%d", content, seen[content])))
	return fmt.Sprintf("bulk:%s:%s:%s", file, g.UserID, id)
}

func parseGrantsCSV(r io.Reader) ([]grant, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var grants []grant
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: want user_id,credits[,reference[,reason]]", line)
		}
		credits, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: credits %q is not an integer", line, rec[1])
		}
		g := grant{UserID: strings.TrimSpace(rec[0]), Credits: credits}
		if len(rec) > 2 {
			g.Reference = strings.TrimSpace(rec[2])
		}
		if len(rec) > 3 {
			g.Reason = strings.TrimSpace(rec[3])
		}
		if err := g.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		grants = append(grants, g)
	}
	return grants, nil
}

func parseGrantsYAML(r io.Reader) ([]grant, error) {
	var doc struct {
		Grants []grant `yaml:"grants"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	for i, g := range doc.Grants {
		if err := g.validate(); err != nil {
			return nil, fmt.Errorf("grant %d: %w", i+1, err)
		}
	}
	return doc.Grants, nil
}

func (g grant) validate() error {
	if g.UserID == "" {
		return errors.New("missing user_id")
	}
	if g.Credits <= 0 {
		return fmt.Errorf("credits must be positive, got %d", g.Credits)
	}
	return nil
}
