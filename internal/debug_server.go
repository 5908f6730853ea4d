package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"shop-relay/domain"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	InspectEndpoint = "/inspect"
	defaultPrefix   = "chat:"
	maxRows         = 500
)

type InspectRow struct {
	Key          string
	Type         string
	Timestamp    string
	EntityID     string
	Conversation string
	Detail       string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix    string
	Items     []InspectRow
	Truncated bool
	Stats     map[string]any
}

// NewDebugServer serves a read-only HTML view of the badger keys under ?prefix= and the
// latest relay statistics. It is meant for local debugging only.
func NewDebugServer(log *slog.Logger, db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = ChatMapper
	}

	mux.HandleFunc(InspectEndpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}

		data := PageData{Prefix: prefix, Stats: make(map[string]any)}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				if len(data.Items) == maxRows {
					data.Truncated = true
					return nil
				}
				item := it.Item()
				key := string(item.Key())
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(key, val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Warn("Inspector could not read badger", "prefix", prefix, "error", err)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Warn("Inspector page not rendered", "error", err)
		}
	})

	return &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ChatMapper renders chat message keys (chat:{conversation}:{nanos}:{id}) and chat user keys.
func ChatMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	switch {
	case parts[0] == "chatuser" && len(parts) >= 2:
		row.Type = "USER"
		row.Conversation = strings.Join(parts[1:], ":")
		row.Detail = "talked with admin"
	case parts[0] == "chat" && len(parts) >= 4:
		row.Type = "CHAT"
		// Customer identities may contain ':', the last two segments never do
		row.Conversation = strings.Join(parts[1:len(parts)-2], ":")
		if nanos, err := strconv.ParseInt(parts[len(parts)-2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, nanos).UTC().Format("2006-01-02 15:04:05")
		}
		row.EntityID = parts[len(parts)-1]
		var message domain.ChatMessage
		if err := json.Unmarshal(val, &message); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Detail = fmt.Sprintf("%s → %s: %s", message.Sender, message.Receiver, message.Message)
	}
	return row
}
