package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/queryline/queryline/internal/cliopt"
	"github.com/queryline/queryline/queryline"
	"github.com/queryline/queryline/queryline/entity"
	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/query"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
	FormatCSV    OutputFormat = "csv"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatJSON, FormatCSV:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// NewLogger builds the CLI logger; verbose enables debug output.
func NewLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// LoadRefData reads the reference data JSON file.
func LoadRefData(path string) (*entity.RefData, error) {
	if path == "" {
		return nil, qlerrors.New(qlerrors.KindIO, "missing --ref (reference data JSON file)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindIO, "read reference data", err)
	}
	var ref entity.RefData
	if err := json.Unmarshal(b, &ref); err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindIO, "parse reference data", err)
	}
	return &ref, nil
}

// CurrentUser resolves --user against the reference data. Unknown or zero id
// means anonymous (nil).
func CurrentUser(g cliopt.GlobalOptions, ref *entity.RefData) *entity.User {
	if g.UserID == 0 {
		return nil
	}
	if u, ok := ref.UserByID(g.UserID); ok {
		return &u
	}
	return nil
}

// Location resolves --tz, falling back to the process-local zone.
func Location(g cliopt.GlobalOptions) (*time.Location, error) {
	if g.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(g.TimeZone)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindIO, "time zone", err)
	}
	return loc, nil
}

// CellValue renders one column of one entity, resolving reference ids to
// their display names.
func CellValue(e *entity.Entity, col queryline.Column, ref *entity.RefData) string {
	if col.CustomFieldID > 0 {
		return strings.Join(e.Custom(col.CustomFieldID), ", ")
	}
	switch col.Name {
	case "id":
		return strconv.FormatInt(e.ID, 10)
	case "project":
		if p, ok := ref.ProjectByID(e.ProjectID()); ok {
			return p.Name
		}
	case "tracker":
		if id, ok := e.Int64("tracker_id"); ok {
			if t, ok := ref.TrackerByID(id); ok {
				return t.Name
			}
		}
	case "status":
		if id, ok := e.Int64("status_id"); ok {
			if s, ok := ref.StatusByID(id); ok {
				return s.Name
			}
		}
	case "priority":
		if id, ok := e.Int64("priority_id"); ok {
			if p, ok := ref.PriorityByID(id); ok {
				return p.Name
			}
		}
	case "author":
		return userName(e, "author_id", ref)
	case "assigned_to":
		return userName(e, "assigned_to_id", ref)
	case "category":
		if id, ok := e.Int64("category_id"); ok {
			if c, ok := ref.CategoryByID(id); ok {
				return c.Name
			}
		}
	case "fixed_version":
		if id, ok := e.Int64("fixed_version_id"); ok {
			if v, ok := ref.VersionByID(id); ok {
				return v.Name
			}
		}
	case "parent":
		if id, ok := e.Int64("parent_id"); ok {
			return strconv.FormatInt(id, 10)
		}
	default:
		return rawValue(e, col.Name)
	}
	return ""
}

func userName(e *entity.Entity, field string, ref *entity.RefData) string {
	id, ok := e.Int64(field)
	if !ok {
		return ""
	}
	if u, ok := ref.UserByID(id); ok {
		return u.Name()
	}
	if g, ok := ref.GroupByID(id); ok {
		return g.Name
	}
	return strconv.FormatInt(id, 10)
}

func rawValue(e *entity.Entity, name string) string {
	v, ok := e.Value(name)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format(query.DateLayout)
		}
		return val.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
