// Package archive persists topology snapshots.
//
// A snapshot is one fetched raw topology plus metadata: when it was taken,
// which server it came from, and how big it was. Snapshots make fetches
// reproducible; the convert and layout commands can run against an archived
// topology long after the network has drifted.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per snapshot under
//     ~/.local/share/topolab/snapshots, for single-user CLI use
//   - [MongoStore]: a shared MongoDB collection, selected by setting
//     TOPOLAB_MONGO_URI or the profile's mongo_uri
//
// [Open] picks the backend from the URI:
//
//	store, err := archive.Open(ctx, os.Getenv(archive.EnvMongoURI), "")
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//	snap := archive.New(raw)
//	err = store.Save(ctx, snap)
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/topolab/pkg/topo"
)

// ErrNotFound is returned when a snapshot ID does not exist in the store.
var ErrNotFound = errors.New("snapshot not found")

// EnvMongoURI selects the MongoDB backend when set.
const EnvMongoURI = "TOPOLAB_MONGO_URI"

// Snapshot is one archived topology fetch.
type Snapshot struct {
	ID        string            `json:"id" bson:"id"`
	Server    string            `json:"server,omitempty" bson:"server,omitempty"`
	Network   string            `json:"network,omitempty" bson:"network,omitempty"`
	FetchedAt time.Time         `json:"fetched_at" bson:"fetched_at"`
	Nodes     int               `json:"nodes" bson:"nodes"`
	Links     int               `json:"links" bson:"links"`
	Raw       *topo.RawTopology `json:"raw,omitempty" bson:"raw,omitempty"`
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save persists a snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// List returns snapshot metadata, newest first. Raw is omitted;
	// fetch the full snapshot with Get.
	List(ctx context.Context) ([]Snapshot, error)

	// Get retrieves a full snapshot by ID. Returns [ErrNotFound] when the
	// ID is unknown.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// New builds a snapshot of a raw topology with a fresh UUID and the current
// time. Node counts come from the inventory when present and from the
// distinct devices named by links otherwise.
func New(raw *topo.RawTopology) *Snapshot {
	nodes := len(raw.Devices)
	if nodes == 0 {
		seen := make(map[string]bool)
		for _, l := range raw.Links {
			seen[l.ANode] = true
			seen[l.BNode] = true
		}
		nodes = len(seen)
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Server:    raw.Source,
		Network:   raw.Network,
		FetchedAt: time.Now().UTC(),
		Nodes:     nodes,
		Links:     len(raw.Links),
		Raw:       raw,
	}
}

// Open selects a backend: MongoDB when uri is set, files otherwise.
// dir overrides the file store location and is ignored for MongoDB.
func Open(ctx context.Context, uri, dir string) (Store, error) {
	if uri != "" {
		return NewMongoStore(ctx, uri)
	}
	return NewFileStore(dir)
}
