package graph

import (
	"context"
	"fmt"

	"github.com/rafiq-ai/rafiq/pkg/hijri"
)

// PersonInput is the upsert_person payload (spec.md §3 Person row).
type PersonInput struct {
	Name              string
	NameAr            string
	Company           string
	DateOfBirth       string // ISO date; year<1900 is treated as Hijri (spec.md §3)
	DateOfBirthHijri  string
	IDNumber          string
}

// UpsertPerson resolves name against existing Person nodes, then MERGEs on
// the canonical name. A Gregorian year below 1900 is converted from Hijri
// before storage (spec.md §3 "date_of_birth with year<1900 is treated as
// Hijri and converted").
func (s *Service) UpsertPerson(ctx context.Context, in PersonInput) (string, error) {
	canonical, err := s.ResolveEntityName(ctx, in.Name, "Person")
	if err != nil {
		return "", err
	}

	dob := in.DateOfBirth
	dobHijri := in.DateOfBirthHijri
	if year, ok := hijri.LeadingYear(dob); ok && year < 1900 {
		converted, err := hijri.ToGregorian(dob)
		if err == nil {
			dobHijri = dob
			dob = converted
		}
	}

	cypher := `
		MERGE (p:Person {name: $canonical})
		ON CREATE SET p.created_at = datetime()
		SET p.name_ar = coalesce($name_ar, p.name_ar),
		    p.company = coalesce($company, p.company),
		    p.date_of_birth = coalesce($dob, p.date_of_birth),
		    p.date_of_birth_hijri = coalesce($dob_hijri, p.date_of_birth_hijri),
		    p.id_number = coalesce($id_number, p.id_number),
		    p.updated_at = datetime()
		RETURN p.name AS name`

	_, err = s.store.Query(ctx, cypher, map[string]any{
		"canonical": canonical,
		"name_ar":   nilIfEmpty(in.NameAr),
		"company":   nilIfEmpty(in.Company),
		"dob":       nilIfEmpty(dob),
		"dob_hijri": nilIfEmpty(dobHijri),
		"id_number": nilIfEmpty(in.IDNumber),
	})
	if err != nil {
		return "", fmt.Errorf("graph: upsert person: %w", err)
	}

	if in.Company != "" {
		if err := s.linkWorksAt(ctx, canonical, in.Company); err != nil {
			return "", err
		}
	}
	return canonical, nil
}

func (s *Service) linkWorksAt(ctx context.Context, personName, company string) error {
	companyCanonical, err := s.ResolveEntityName(ctx, company, "Company")
	if err != nil {
		return err
	}
	_, err = s.store.Query(ctx, `
		MATCH (p:Person {name: $person})
		MERGE (c:Company {name: $company})
		ON CREATE SET c.created_at = datetime()
		MERGE (p)-[:WORKS_AT]->(c)`,
		map[string]any{"person": personName, "company": companyCanonical})
	if err != nil {
		return fmt.Errorf("graph: link works_at: %w", err)
	}
	return nil
}

// UpsertCompany MERGEs a Company node by resolved canonical name.
func (s *Service) UpsertCompany(ctx context.Context, name string) (string, error) {
	canonical, err := s.ResolveEntityName(ctx, name, "Company")
	if err != nil {
		return "", err
	}
	_, err = s.store.Query(ctx, `
		MERGE (c:Company {name: $name})
		ON CREATE SET c.created_at = datetime()
		SET c.updated_at = datetime()`,
		map[string]any{"name": canonical})
	if err != nil {
		return "", fmt.Errorf("graph: upsert company: %w", err)
	}
	return canonical, nil
}

// PersonContext is the flattened result of query_person_context.
type PersonContext struct {
	Name       string
	NameAr     string
	Company    string
	Properties map[string]any
}

// QueryPersonContext returns a person's own properties (their relationship
// context is fetched separately via QueryEntityContext, spec.md §4.7).
func (s *Service) QueryPersonContext(ctx context.Context, name string) (*PersonContext, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (p:Person {name: $name}) RETURN p`,
		map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("graph: query person context: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	props, _ := rows[0]["p"].(map[string]any)
	nameAr, _ := props["name_ar"].(string)
	company, _ := props["company"].(string)
	return &PersonContext{
		Name:       name,
		NameAr:     nameAr,
		Company:    company,
		Properties: stripInternal(props),
	}, nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
