package storage

import (
	"fmt"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	kuzu "github.com/kuzudb/go-kuzu"
)

// Kuzu provides an embedded Kuzu graph database implementation of storage
// interfaces. It handles database connections and operations for the piece
// provenance graph.
type Kuzu struct {
	DB   *kuzu.Database
	Conn *kuzu.Connection
}

// NewKuzu creates a new Kuzu client connection with the provided database path.
// It returns an initialized Kuzu struct and any error encountered during setup.
// The returned Kuzu instance must be closed with Close() when no longer needed.
func NewKuzu(dbPath string, systemConfig kuzu.SystemConfig) (*Kuzu, error) {
	db, err := kuzu.OpenDatabase(dbPath, systemConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kuzu database: %w", err)
	}

	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close() // Clean up the database if connection fails
		return nil, fmt.Errorf("failed to create kuzu connection: %w", err)
	}

	k := &Kuzu{DB: db, Conn: conn}

	if err := k.SetupSchema(); err != nil {
		// Clean up both on schema failure
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("failed to set up schema: %w", err)
	}

	return k, nil
}

// SetupSchema defines and creates the necessary node and relationship tables in Kuzu.
// This is idempotent; it will not fail if the tables already exist.
func (k *Kuzu) SetupSchema() error {
	pieceTableQuery := `
    CREATE NODE TABLE IF NOT EXISTS piece (
        name STRING,
        category STRING,
        status STRING,
        created_at STRING,
        PRIMARY KEY (name)
    )`
	sourceTableQuery := `
    CREATE NODE TABLE IF NOT EXISTS source (
        url STRING,
        PRIMARY KEY (url)
    )`
	relTableQuery := `
    CREATE REL TABLE IF NOT EXISTS SOURCED_FROM (
        FROM piece TO source
    )`

	for _, query := range []string{pieceTableQuery, sourceTableQuery, relTableQuery} {
		stmt, err := k.Conn.Query(query)
		if err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
		stmt.Close()
	}

	return nil
}

func graphPieceFromMap(props map[string]any) atlasportal.GraphPiece {
	name, _ := props["name"].(string)
	category, _ := props["category"].(string)
	status, _ := props["status"].(string)
	createdAtStr, _ := props["created_at"].(string)
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		createdAt = time.Now()
	}

	return atlasportal.GraphPiece{
		Name:      name,
		Category:  category,
		Status:    status,
		CreatedAt: createdAt,
	}
}

// GraphPiece retrieves a piece node by name from the Kuzu database.
func (k *Kuzu) GraphPiece(name string) (atlasportal.GraphPiece, error) {
	query := `MATCH (p:piece {name: $name}) RETURN p`
	params := map[string]any{"name": name}
	prepped, _ := k.Conn.Prepare(query)
	queryResult, err := k.Conn.Execute(prepped, params)
	if err != nil {
		return atlasportal.GraphPiece{}, fmt.Errorf("failed to run GraphPiece query: %w", err)
	}
	defer queryResult.Close()

	if !queryResult.HasNext() {
		return atlasportal.GraphPiece{}, atlasportal.ErrPieceNotFound
	}
	row, err := queryResult.Next()
	if err != nil {
		return atlasportal.GraphPiece{}, fmt.Errorf("failed to get GraphPiece result row: %w", err)
	}

	nodeVal, err := row.GetValue(0)
	if err != nil {
		return atlasportal.GraphPiece{}, fmt.Errorf("failed to get GraphPiece node value: %w", err)
	}
	nodeProps, ok := nodeVal.(kuzu.Node)
	if !ok {
		return atlasportal.GraphPiece{}, fmt.Errorf("invalid node type, got %T, want kuzu.Node", nodeVal)
	}
	return graphPieceFromMap(nodeProps.Properties), nil
}

// GraphUpsertPiece creates or updates a piece node in the Kuzu graph database.
func (k *Kuzu) GraphUpsertPiece(piece atlasportal.GraphPiece) error {
	query := `
MERGE (p:piece {name: $name})
ON CREATE SET p.category = $category, p.status = $status, p.created_at = $created_at
ON MATCH SET p.category = $category, p.status = $status, p.created_at = $created_at
`
	params := map[string]any{
		"name":       piece.Name,
		"category":   piece.Category,
		"status":     piece.Status,
		"created_at": piece.CreatedAt.Format(time.RFC3339),
	}
	prepped, err := k.Conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare GraphUpsertPiece: %w", err)
	}
	_, err = k.Conn.Execute(prepped, params)
	return err
}

// GraphLinkSource records that a piece was found at the given source URL.
// Both the source node and the link are created if absent.
func (k *Kuzu) GraphLinkSource(pieceName, url string) error {
	query := `
MATCH (p:piece {name: $piece_name})
MERGE (s:source {url: $url})
WITH p, s
MERGE (p)-[:SOURCED_FROM]->(s)
`
	params := map[string]any{
		"piece_name": pieceName,
		"url":        url,
	}
	prepped, err := k.Conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare GraphLinkSource: %w", err)
	}
	_, err = k.Conn.Execute(prepped, params)
	return err
}

// GraphPieceSources retrieves all source URLs linked to the given piece.
func (k *Kuzu) GraphPieceSources(pieceName string) ([]string, error) {
	query := `
MATCH (p:piece {name: $piece_name})-[:SOURCED_FROM]->(s:source)
RETURN s.url
`
	params := map[string]any{"piece_name": pieceName}
	prepped, _ := k.Conn.Prepare(query)

	queryResult, err := k.Conn.Execute(prepped, params)
	if err != nil {
		return nil, fmt.Errorf("failed to run GraphPieceSources query: %w", err)
	}
	defer queryResult.Close()

	urls := make([]string, 0)
	for queryResult.HasNext() {
		row, err := queryResult.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get GraphPieceSources result row: %w", err)
		}
		urlVal, err := row.GetValue(0)
		if err != nil {
			continue
		}
		urlStr, ok := urlVal.(string)
		if !ok {
			continue
		}
		urls = append(urls, urlStr)
	}

	return urls, nil
}

// Close terminates the connection to the Kuzu database.
func (k *Kuzu) Close() {
	if k.Conn != nil {
		k.Conn.Close()
	}
	if k.DB != nil {
		k.DB.Close()
	}
}
