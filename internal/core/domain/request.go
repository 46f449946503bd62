package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultLayerName is the layer name used when a request does not name one.
const DefaultLayerName = "cartodb-query"

// ConnParams holds the parameters needed to reach the database an export reads from.
type ConnParams struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

// OGRString renders the parameters as a converter datasource string. Values follow
// libpq conninfo quoting.
func (c ConnParams) OGRString() string {
	return fmt.Sprintf("PG:host=%s port=%d user=%s dbname=%s password=%s",
		conninfoValue(c.Host), c.Port, conninfoValue(c.User), conninfoValue(c.DBName), conninfoValue(c.Password))
}

// conninfoValue single-quotes v when it is empty or holds whitespace, quotes or
// backslashes, escaping the latter two with a backslash.
func conninfoValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\r\n\f\v'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// DSN renders the parameters as a postgres connection URL.
func (c ConnParams) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

// Merge returns c with empty fields filled in from defaults.
func (c ConnParams) Merge(defaults ConnParams) ConnParams {
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.User == "" {
		c.User = defaults.User
	}
	if c.Password == "" {
		c.Password = defaults.Password
	}
	if c.DBName == "" {
		c.DBName = defaults.DBName
	}
	return c
}

// ExportRequest carries everything that defines an export plus per-request settings.
type ExportRequest struct {
	// FormatID selects the output format, see LookupFormat.
	FormatID string
	// Conn is the database the query runs against.
	Conn ConnParams
	// SQL is the query whose result is exported.
	SQL string
	// LayerName names the layer inside the artifact.
	LayerName string
	// GeometryHint names the geometry column to use for spatial reference detection.
	GeometryHint string
	// SkipFields lists result columns left out of the export.
	SkipFields []string
	// ExtraArgs are appended verbatim to the converter arguments.
	ExtraArgs []string
	// Timeout bounds the converter run. Zero means no limit.
	Timeout time.Duration
}

// Layer returns the layer name, falling back to DefaultLayerName.
func (r ExportRequest) Layer() string {
	if r.LayerName == "" {
		return DefaultLayerName
	}
	return r.LayerName
}

// Validate checks the request can produce an export.
func (r ExportRequest) Validate() error {
	if strings.TrimSpace(r.SQL) == "" {
		return ErrEmptyQuery
	}
	_, err := LookupFormat(r.FormatID)
	return err
}

// Key returns the fingerprint of the request.
func (r ExportRequest) Key() Fingerprint {
	return BuildKey(r.FormatID, r.Conn.DBName, r.Conn.User, r.GeometryHint, r.Layer(), r.SQL, r.SkipFields)
}

// Column describes one result column of an export query.
type Column struct {
	Name     string
	Geometry bool
}

// SpatialRef is the spatial reference detected on a geometry column.
type SpatialRef struct {
	SRID         int
	GeometryType string
}
