package drivemap

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/restore.ps1.tmpl
var restoreScriptTemplate string

var scriptTmpl = template.Must(template.New("restore").Parse(restoreScriptTemplate))

// Generator compiles a mapping set into a standalone restore script. The
// output is a program, not data: it re-implements the restore protocol so it
// stays runnable years later without this tool present. Given the same set the
// output is byte-identical apart from the timestamp header line.
type Generator struct {
	time TimeProvider
}

// NewGenerator creates a Generator using the given deps.
func NewGenerator(deps Deps) *Generator {
	deps.fillDefaults()
	return &Generator{time: deps.Time}
}

type scriptRecord struct {
	Letter      string
	Remote      string
	Description string
	Persistent  string
}

type scriptData struct {
	Timestamp string
	Count     int
	Records   []scriptRecord
}

// Generate renders the restore script for set, one restore invocation per
// record in set order. Every record value crosses into the generated source
// through EscapePSLiteral; this is the single injection boundary, and no other
// interpolation of record data exists in the template.
func (g *Generator) Generate(set MappingSet) ([]byte, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to generate script for malformed mapping set: %w", err)
	}

	data := scriptData{
		Timestamp: g.time.Now().Format("2006-01-02 15:04:05"),
		Count:     len(set),
		Records:   make([]scriptRecord, 0, len(set)),
	}
	for _, rec := range set {
		persistent := "false"
		if rec.Persistent {
			persistent = "true"
		}
		data.Records = append(data.Records, scriptRecord{
			Letter:      EscapePSLiteral(strings.ToUpper(rec.DriveLetter)),
			Remote:      EscapePSLiteral(rec.RemotePath),
			Description: EscapePSLiteral(rec.Description),
			Persistent:  persistent,
		})
	}

	var buf bytes.Buffer
	if err := scriptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render restore script: %w", err)
	}
	return buf.Bytes(), nil
}

// EscapePSLiteral escapes a value for embedding inside a single-quoted
// PowerShell string literal. Within single quotes PowerShell treats every
// character literally except the quote itself, which is escaped by doubling,
// so no value can break out of its literal context or alter control flow.
func EscapePSLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
