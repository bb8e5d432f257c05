package storage

import (
	"context"
	"fmt"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Neo4J provides a Neo4j graph database implementation of storage interfaces.
// It handles database connections and operations for the piece provenance
// graph: piece nodes linked to the source URLs they were found at.
type Neo4J struct {
	client neo4j.DriverWithContext
}

// NewNeo4J creates a new Neo4j client connection with the provided connection parameters.
// It returns an initialized Neo4J struct and any error encountered during connection setup.
// The returned Neo4J instance must be closed with Close() when no longer needed to free up resources.
func NewNeo4J(target, user, password string) (Neo4J, error) {
	driver, err := neo4j.NewDriverWithContext(
		target,
		neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return Neo4J{}, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return Neo4J{client: driver}, nil
}

func graphPieceFromNode(node dbtype.Node) atlasportal.GraphPiece {
	name, ok := node.Props["name"].(string)
	if !ok {
		name = ""
	}
	category, ok := node.Props["category"].(string)
	if !ok {
		category = ""
	}
	status, ok := node.Props["status"].(string)
	if !ok {
		status = ""
	}
	createdAtStr, ok := node.Props["created_at"].(string)
	if !ok {
		createdAtStr = time.Now().Format(time.RFC3339)
	}
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

// GraphPiece retrieves a piece node by name from the Neo4j database.
// It returns the found piece or an error if the piece doesn't exist or if the query fails.
func (n Neo4J) GraphPiece(name string) (atlasportal.GraphPiece, error) {
	res, err := n.session(func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			query := "MATCH (p:piece {name: $name}) RETURN p"
			queryRes, err := tx.Run(ctx, query, map[string]any{
				"name": name,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to run query: %w", err)
			}

			piece, err := queryRes.Single(ctx)
			if err != nil {
				return nil, atlasportal.ErrPieceNotFound
			}
			return piece, nil
		})
	})
	if err != nil {
		return atlasportal.GraphPiece{}, err
	}
	record, ok := res.(*db.Record)
	if !ok {
		return atlasportal.GraphPiece{}, fmt.Errorf("invalid result type, got %T, want *db.Record", res)
	}
	pNode, ok := record.Get("p")
	if !ok {
		return atlasportal.GraphPiece{}, fmt.Errorf("expected p key is not found")
	}
	node, ok := pNode.(dbtype.Node)
	if !ok {
		return atlasportal.GraphPiece{}, fmt.Errorf("invalid p type, got %T, want dbtype.Node", pNode)
	}

	return graphPieceFromNode(node), nil
}

// GraphUpsertPiece creates or updates a piece node in the Neo4j graph database.
// It returns an error if the database operation fails.
func (n Neo4J) GraphUpsertPiece(piece atlasportal.GraphPiece) error {
	_, err := n.session(func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(
				ctx,
				`
MERGE (p:piece {name: $properties.name})
SET p += $properties`,
				map[string]any{
					"properties": map[string]any{
						"name":       piece.Name,
						"category":   piece.Category,
						"status":     piece.Status,
						"created_at": piece.CreatedAt.Format(time.RFC3339),
					},
				},
			)
		})
	})

	return err
}

// GraphLinkSource records that a piece was found at the given source URL.
// Both the source node and the link are created if absent.
func (n Neo4J) GraphLinkSource(pieceName, url string) error {
	_, err := n.session(func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(
				ctx,
				`
MATCH (p:piece {name: $piece_name})
MERGE (s:source {url: $url})
MERGE (p)-[:SOURCED_FROM]->(s)`,
				map[string]any{
					"piece_name": pieceName,
					"url":        url,
				},
			)
		})
	})

	return err
}

// GraphPieceSources retrieves all source URLs linked to the given piece.
// It returns a slice of URLs and any error encountered during the operation.
func (n Neo4J) GraphPieceSources(pieceName string) ([]string, error) {
	res, err := n.session(func(ctx context.Context, sess neo4j.SessionWithContext) (any, error) {
		return sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			query := `
MATCH (p:piece {name: $piece_name})-[:SOURCED_FROM]->(s:source)
RETURN s.url as url`
			queryRes, err := tx.Run(ctx, query, map[string]any{
				"piece_name": pieceName,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to run query: %w", err)
			}

			urls := make([]string, 0)
			for record, err := range queryRes.Records(ctx) {
				if err != nil {
					return nil, fmt.Errorf("failed to get result: %w", err)
				}

				u, ok := record.Get("url")
				if !ok {
					return nil, fmt.Errorf("expected url key is not found")
				}
				urlStr, ok := u.(string)
				if !ok {
					return nil, fmt.Errorf("invalid url type, got %T, want string", u)
				}

				urls = append(urls, urlStr)
			}

			return urls, nil
		})
	})
	if err != nil {
		return nil, err
	}
	urls, ok := res.([]string)
	if !ok {
		return nil, fmt.Errorf("invalid result type: got %T, want []string", res)
	}

	return urls, nil
}

// Close terminates the connection to the Neo4j database.
// It returns any error encountered during the closing operation.
func (n Neo4J) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

func (n Neo4J) session(sessFunc func(context.Context, neo4j.SessionWithContext) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	sess := n.client.NewSession(ctx, neo4j.SessionConfig{})
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*30)
		defer closeCancel()
		_ = sess.Close(closeCtx)
	}()

	trxCtx, trxCancel := context.WithTimeout(context.Background(), time.Second*30)
	defer trxCancel()

	return sessFunc(trxCtx, sess)
}
