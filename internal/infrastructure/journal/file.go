package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
	domainJournal "github.com/execution-hub/contest-hub/internal/domain/journal"
)

const (
	dirPerms    = 0o755
	datePattern = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]"
)

var (
	unsafeID   = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRuns   = regexp.MustCompile(`-+`)
	mainClose  = regexp.MustCompile(`(?i)</main>\s*<footer>`)
	bodyClose  = regexp.MustCompile(`(?i)</body>`)
	emptyMeta  = `<p class="meta" id="cMeta"></p>`
	pageLayout = template.Must(template.New("page").Parse(pageHTML))
	entryBlock = template.Must(template.New("entry").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
	}).Parse(entryHTML))
)

// File writes one human-readable HTML document per contest. Entries are
// inserted before the closing main tag; the document is replaced atomically.
type File struct {
	dir    string
	now    func() time.Time
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	logger zerolog.Logger
}

// NewFile creates a journal writing into dir.
func NewFile(dir string, logger zerolog.Logger) (*File, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("journal: dir is required")
	}
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("journal: create dir: %w", err)
	}
	return &File{
		dir:    dir,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
		logger: logger.With().Str("service", "journal").Logger(),
	}, nil
}

// SanitizeID maps a contest id onto a safe file name fragment. Ids that are
// already safe map to themselves; any other id gets a ".<hash>" suffix of
// the raw id, so distinct ids never share a fragment.
func SanitizeID(id string) string {
	id = strings.TrimSpace(id)
	s := unsafeID.ReplaceAllString(id, "-")
	s = strings.Trim(dashRuns.ReplaceAllString(s, "-"), "-")
	if s == id {
		return s
	}
	if s == "" {
		s = "unknown"
	}
	return fmt.Sprintf("%s.%016x", s, xxhash.Sum64String(id))
}

// Target returns the document for the contest, whether or not it exists yet.
func (f *File) Target(contestID string) (string, error) {
	sid := SanitizeID(contestID)
	matches, err := filepath.Glob(filepath.Join(f.dir, datePattern+"_contest_"+sid+".html"))
	if err != nil {
		return "", err
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	name := fmt.Sprintf("%s_contest_%s.html", f.now().Format("2006-01-02"), sid)
	return filepath.Join(f.dir, name), nil
}

func (f *File) Append(ctx context.Context, entry domainJournal.Entry) error {
	if !entry.Kind.Valid() {
		return fmt.Errorf("%w: %q", domainJournal.ErrUnknownKind, entry.Kind)
	}
	if entry.At.IsZero() {
		entry.At = f.now()
	}

	lock := f.lockFor(entry.ContestID)
	lock.Lock()
	defer lock.Unlock()

	path, err := f.Target(entry.ContestID)
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		doc, err = f.initial(entry)
	}
	if err != nil {
		return fmt.Errorf("journal: read %s: %w", path, err)
	}

	block, err := renderEntry(entry)
	if err != nil {
		return err
	}
	html := string(doc)
	switch {
	case mainClose.MatchString(html):
		html = mainClose.ReplaceAllLiteralString(html, block+"\n</main>\n<footer>")
	case bodyClose.MatchString(html):
		html = bodyClose.ReplaceAllLiteralString(html, block+"\n</body>")
	default:
		html += "\n" + block + "\n"
	}
	if len(entry.Meta) > 0 && strings.Contains(html, emptyMeta) {
		html = strings.Replace(html, emptyMeta, metaLine(entry.Meta), 1)
	}

	if err := atomic.WriteFile(path, strings.NewReader(html)); err != nil {
		return fmt.Errorf("journal: write %s: %w", path, err)
	}
	f.logger.Debug().Str("contest_id", entry.ContestID).Str("kind", string(entry.Kind)).Msg("journal entry appended")
	return nil
}

func (f *File) lockFor(contestID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[contestID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[contestID] = l
	}
	return l
}

func (f *File) initial(entry domainJournal.Entry) ([]byte, error) {
	title := "Contest #" + SanitizeID(entry.ContestID)
	if entry.Snapshot != nil && entry.Snapshot.Title != "" {
		title = entry.Snapshot.Title
	}
	var buf bytes.Buffer
	if err := pageLayout.Execute(&buf, map[string]string{"Title": title}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type entryView struct {
	Kind     string
	At       string
	Relative string
	Text     string
	Meta     []domainJournal.Meta
	Changes  []contest.Change
	Winners  []string
	Snapshot string
}

func renderEntry(entry domainJournal.Entry) (string, error) {
	view := entryView{
		Kind:     string(entry.Kind),
		At:       entry.At.UTC().Format(time.RFC3339Nano),
		Relative: humanize.Time(entry.At),
		Text:     entry.Text,
		Meta:     entry.Meta,
		Changes:  entry.Changes,
		Winners:  entry.Winners,
	}
	if entry.Snapshot != nil {
		data, err := json.MarshalIndent(entry.Snapshot, "", "  ")
		if err != nil {
			return "", fmt.Errorf("journal: encode snapshot: %w", err)
		}
		view.Snapshot = string(data)
	}
	var buf bytes.Buffer
	if err := entryBlock.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("journal: render entry: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func metaLine(meta []domainJournal.Meta) string {
	parts := make([]string, 0, len(meta))
	for _, m := range meta {
		parts = append(parts, template.HTMLEscapeString(m.Key)+": "+template.HTMLEscapeString(m.Value))
	}
	return `<p class="meta" id="cMeta">` + strings.Join(parts, " • ") + `</p>`
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width,initial-scale=1.0"/>
<title>Contest Log - {{.Title}}</title>
<style>
body{margin:0;background:#0b1220;color:#e5e7eb;font-family:system-ui,sans-serif}
header,main,footer{max-width:980px;margin:0 auto;padding:12px 18px}
h1{color:#38bdf8;font-size:22px;margin:0 0 6px}
.meta,time{color:#94a3b8}
.entry{background:#121a2b;border:1px solid #1f2937;border-radius:12px;padding:12px 16px;margin:12px 0}
.badge{display:inline-block;padding:2px 8px;border-radius:999px;font-size:12px;border:1px solid #38bdf8}
.entry.start .badge{border-color:#22c55e}
.entry.update .badge{border-color:#f59e0b}
.entry.end .badge{border-color:#ef4444}
.entry.warn .badge{border-color:#f472b6}
pre{white-space:pre-wrap;word-break:break-word}
</style>
</head>
<body>
<header>
  <h1>Contest Log</h1>
  <h2 id="cTitle">{{.Title}}</h2>
  <p class="meta" id="cMeta"></p>
</header>
<main id="entries">
</main>
<footer><small>contest-hub journal</small></footer>
</body>
</html>
`

const entryHTML = `
<article class="entry {{.Kind}}">
  <div class="row"><span class="badge">{{upper .Kind}}</span> <time datetime="{{.At}}">{{.At}}</time> <small>{{.Relative}}</small></div>
  {{- if .Text}}
  <p>{{.Text}}</p>
  {{- end}}
  {{- if .Meta}}
  <div class="kv">{{range .Meta}}<span><b>{{.Key}}:</b> {{.Value}}</span> {{end}}</div>
  {{- end}}
  {{- if .Changes}}
  <table class="diff"><tr><th>field</th><th>before</th><th>after</th></tr>{{range .Changes}}<tr><td>{{.Field}}</td><td>{{.Before}}</td><td>{{.After}}</td></tr>{{end}}</table>
  {{- end}}
  {{- if .Winners}}
  <div><b>Winners:</b><ul>{{range .Winners}}<li>{{.}}</li>{{end}}</ul></div>
  {{- end}}
  {{- if .Snapshot}}
  <details><summary>Snapshot</summary><pre>{{.Snapshot}}</pre></details>
  {{- end}}
</article>
`
