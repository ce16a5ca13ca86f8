package resources

import (
	"strings"
	"time"
)

// DefaultServer agrupa los recursos sin resource server explícito.
const DefaultServer = "default"

// ListDelimiter separa actions/locations/datatypes en la columna de texto.
const ListDelimiter = ","

// Access es el item de acceso en el vocabulario GNAP (request y response).
type Access struct {
	Type           string   `json:"type"`
	Actions        []string `json:"actions,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	DataTypes      []string `json:"datatypes,omitempty"`
	ResourceServer string   `json:"resource_server,omitempty"`
}

type Resource struct {
	ID      string
	GrantID string

	// Position conserva el orden en que el cliente pidió los items.
	Position int

	Type           string
	ResourceServer string

	Actions   []string
	Locations []string
	DataTypes []string

	CreatedAt time.Time
}

// ServerKey es la clave de agrupación para emitir tokens.
func (r Resource) ServerKey() string {
	if s := strings.TrimSpace(r.ResourceServer); s != "" {
		return s
	}
	return DefaultServer
}

func (r Resource) ToAccess() Access {
	return Access{
		Type:           r.Type,
		Actions:        cloneList(r.Actions),
		Locations:      cloneList(r.Locations),
		DataTypes:      cloneList(r.DataTypes),
		ResourceServer: r.ResourceServer,
	}
}

// Record es la forma persistida: las listas van como texto unido por ListDelimiter.
type Record struct {
	ID             string
	GrantID        string
	Position       int
	Type           string
	ResourceServer string
	Actions        string
	Locations      string
	DataTypes      string
	CreatedAt      time.Time
}

func ToRecord(r Resource) Record {
	return Record{
		ID:             r.ID,
		GrantID:        r.GrantID,
		Position:       r.Position,
		Type:           r.Type,
		ResourceServer: r.ResourceServer,
		Actions:        JoinList(r.Actions),
		Locations:      JoinList(r.Locations),
		DataTypes:      JoinList(r.DataTypes),
		CreatedAt:      r.CreatedAt,
	}
}

func FromRecord(rec Record) Resource {
	return Resource{
		ID:             rec.ID,
		GrantID:        rec.GrantID,
		Position:       rec.Position,
		Type:           rec.Type,
		ResourceServer: rec.ResourceServer,
		Actions:        SplitList(rec.Actions),
		Locations:      SplitList(rec.Locations),
		DataTypes:      SplitList(rec.DataTypes),
		CreatedAt:      rec.CreatedAt,
	}
}

func JoinList(in []string) string {
	if len(in) == 0 {
		return ""
	}
	return strings.Join(in, ListDelimiter)
}

func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ListDelimiter)
}

// Group son los recursos de un mismo resource server.
type Group struct {
	Server    string
	Resources []Resource
}

// GroupByServer agrupa por ServerKey respetando el orden de primera aparición.
func GroupByServer(in []Resource) []Group {
	idx := map[string]int{}
	out := make([]Group, 0)
	for _, r := range in {
		key := r.ServerKey()
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, Group{Server: key})
		}
		out[i].Resources = append(out[i].Resources, r)
	}
	return out
}

func ToAccessList(in []Resource) []Access {
	out := make([]Access, 0, len(in))
	for _, r := range in {
		out = append(out, r.ToAccess())
	}
	return out
}

func cloneList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
