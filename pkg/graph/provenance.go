package graph

import (
	"context"
	"encoding/json"
	"fmt"
)

// FileStub is the minimal File-node record used for provenance tracking
// across re-uploads (spec.md §4.4 Provenance group, §4.2 re-upload
// semantics).
type FileStub struct {
	Filename string
	FileHash string
}

// EnsureFileStub MERGEs a File node by hash, recording the filename on
// first creation only.
func (s *Service) EnsureFileStub(ctx context.Context, filename, fileHash string) error {
	_, err := s.store.Query(ctx, `
		MERGE (f:File {file_hash: $hash})
		ON CREATE SET f.filename = $filename, f.created_at = datetime()`,
		map[string]any{"hash": fileHash, "filename": filename})
	if err != nil {
		return fmt.Errorf("graph: ensure file stub: %w", err)
	}
	return nil
}

// FindFileByFilename returns the most recently created File node for a
// given filename, used to detect a re-upload of the same document.
func (s *Service) FindFileByFilename(ctx context.Context, filename string) (*FileStub, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (f:File {filename: $filename})
		RETURN f.filename AS filename, f.file_hash AS file_hash
		ORDER BY f.created_at DESC LIMIT 1`,
		map[string]any{"filename": filename})
	if err != nil {
		return nil, fmt.Errorf("graph: find file by filename: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	fn, _ := rows[0]["filename"].(string)
	hash, _ := rows[0]["file_hash"].(string)
	return &FileStub{Filename: fn, FileHash: hash}, nil
}

// FindFileByHash looks up a File node by content hash, used to skip
// re-ingesting byte-identical content.
func (s *Service) FindFileByHash(ctx context.Context, fileHash string) (*FileStub, error) {
	rows, err := s.store.Query(ctx, `MATCH (f:File {file_hash: $hash}) RETURN f.filename AS filename, f.file_hash AS file_hash`,
		map[string]any{"hash": fileHash})
	if err != nil {
		return nil, fmt.Errorf("graph: find file by hash: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	fn, _ := rows[0]["filename"].(string)
	hash, _ := rows[0]["file_hash"].(string)
	return &FileStub{Filename: fn, FileHash: hash}, nil
}

// FileSectionMap is the {section_name: [entity names]} snapshot captured
// before a re-upload wipes a file's extracted entities, so their
// relationships can be restored against the new extraction (spec.md §4.2).
type FileSectionMap map[string][]string

// GetFileSectionMap reads the JSON-encoded section_map property off a
// File node, empty if none was ever recorded.
func (s *Service) GetFileSectionMap(ctx context.Context, fileHash string) (FileSectionMap, error) {
	rows, err := s.store.Query(ctx, `MATCH (f:File {file_hash: $hash}) RETURN f.section_map AS section_map`,
		map[string]any{"hash": fileHash})
	if err != nil {
		return nil, fmt.Errorf("graph: get file section map: %w", err)
	}
	if len(rows) == 0 {
		return FileSectionMap{}, nil
	}
	raw, _ := rows[0]["section_map"].(string)
	if raw == "" {
		return FileSectionMap{}, nil
	}
	var m FileSectionMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return FileSectionMap{}, fmt.Errorf("graph: decode file section map: %w", err)
	}
	return m, nil
}

// setFileSectionMap writes the current {section: entity names} mapping
// back onto the File node, called after a fresh extraction pass.
func (s *Service) setFileSectionMap(ctx context.Context, fileHash string, m FileSectionMap) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("graph: encode file section map: %w", err)
	}
	if _, err := s.store.Query(ctx, `MATCH (f:File {file_hash: $hash}) SET f.section_map = $map`,
		map[string]any{"hash": fileHash, "map": string(b)}); err != nil {
		return fmt.Errorf("graph: set file section map: %w", err)
	}
	return nil
}

// SupersedeFile links an old File node to its replacement via SUPERSEDES
// and snapshots the old node's section map for RestoreSectionLinks,
// implementing the re-upload flow of spec.md §4.2.
func (s *Service) SupersedeFile(ctx context.Context, oldHash, newHash, newFilename string) (FileSectionMap, error) {
	sections, err := s.GetFileSectionMap(ctx, oldHash)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureFileStub(ctx, newFilename, newHash); err != nil {
		return nil, err
	}
	if _, err := s.store.Query(ctx, `
		MATCH (old:File {file_hash: $old}), (new:File {file_hash: $new})
		MERGE (new)-[:SUPERSEDES]->(old)
		SET old.superseded_by = $new, old.superseded_at = datetime()`,
		map[string]any{"old": oldHash, "new": newHash}); err != nil {
		return nil, fmt.Errorf("graph: supersede file: %w", err)
	}
	return sections, nil
}

// CleanupFileEntities detaches every entity whose ONLY extraction
// provenance is the given file, deleting entities that would otherwise be
// orphaned, and simply unlinking (not deleting) entities that have other
// extraction sources, per spec.md §4.2's re-upload cleanup step.
func (s *Service) CleanupFileEntities(ctx context.Context, fileHash string) error {
	if _, err := s.store.Query(ctx, `
		MATCH (n)-[r:EXTRACTED_FROM]->(f:File {file_hash: $hash})
		WHERE size((n)-[:EXTRACTED_FROM]->()) = 1
		DETACH DELETE n`,
		map[string]any{"hash": fileHash}); err != nil {
		return fmt.Errorf("graph: cleanup file entities (orphans): %w", err)
	}
	if _, err := s.store.Query(ctx, `
		MATCH (n)-[r:EXTRACTED_FROM]->(f:File {file_hash: $hash})
		DELETE r`,
		map[string]any{"hash": fileHash}); err != nil {
		return fmt.Errorf("graph: cleanup file entities (unlink): %w", err)
	}
	return nil
}

// RestoreSectionLinks re-applies EXTRACTED_FROM edges for entities named
// in a pre-upload section snapshot that still exist under the new file
// hash, used after re-extraction completes so old relationships are not
// silently lost when the new pass re-derives the same entity names.
func (s *Service) RestoreSectionLinks(ctx context.Context, newHash string, sections FileSectionMap) error {
	for section, names := range sections {
		for _, name := range names {
			if _, err := s.store.Query(ctx, `
				MATCH (n {name: $name}), (f:File {file_hash: $hash})
				MERGE (n)-[r:EXTRACTED_FROM]->(f)
				SET r.section = $section`,
				map[string]any{"name": name, "hash": newHash, "section": section}); err != nil {
				return fmt.Errorf("graph: restore section links: %w", err)
			}
		}
	}
	return s.setFileSectionMap(ctx, newHash, sections)
}
