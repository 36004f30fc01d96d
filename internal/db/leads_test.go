package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"corysite/internal/models"
)

func TestInsertLead(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	lead := &models.Lead{
		Source:      models.SourceROIReport,
		Name:        "Dana Admissions",
		Email:       "dana@college.edu",
		Institution: "Riverside College",
		ROI:         map[string]float64{"netBenefit": 7981800},
	}
	if err := db.InsertLead(ctx, lead); err != nil {
		t.Fatalf("InsertLead() error = %v", err)
	}
	if lead.ID == uuid.Nil {
		t.Error("InsertLead() did not set ID")
	}

	leads, err := db.ListLeads(ctx, 10)
	if err != nil {
		t.Fatalf("ListLeads() error = %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("ListLeads() = %d leads, want 1", len(leads))
	}
	if leads[0].ROI["netBenefit"] != 7981800 {
		t.Errorf("ListLeads() roi = %v", leads[0].ROI)
	}
	if leads[0].IsForwarded() {
		t.Error("new lead reported as forwarded")
	}
}

func TestInsertLead_NoROISnapshot(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	lead := &models.Lead{Source: models.SourceNewsletter, Email: "news@college.edu"}
	if err := db.InsertLead(ctx, lead); err != nil {
		t.Fatalf("InsertLead() error = %v", err)
	}

	leads, err := db.ListLeads(ctx, 10)
	if err != nil {
		t.Fatalf("ListLeads() error = %v", err)
	}
	if len(leads) != 1 || leads[0].ROI != nil {
		t.Errorf("ListLeads() = %+v, want one lead without roi", leads)
	}
}

func TestMarkLeadForwarded(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	first := &models.Lead{Source: models.SourceDemo, Name: "A", Email: "a@college.edu"}
	second := &models.Lead{Source: models.SourceContact, Name: "B", Email: "b@college.edu"}
	for _, l := range []*models.Lead{first, second} {
		if err := db.InsertLead(ctx, l); err != nil {
			t.Fatalf("InsertLead() error = %v", err)
		}
	}

	if err := db.MarkLeadForwarded(ctx, first.ID); err != nil {
		t.Fatalf("MarkLeadForwarded() error = %v", err)
	}

	pending, err := db.ListUnforwardedLeads(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnforwardedLeads() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("ListUnforwardedLeads() = %+v, want only second lead", pending)
	}

	if err := db.MarkLeadForwarded(ctx, uuid.New()); err != ErrLeadNotFound {
		t.Errorf("MarkLeadForwarded(unknown) error = %v, want ErrLeadNotFound", err)
	}
}

func TestCountLeadsBySource(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for _, l := range []*models.Lead{
		{Source: models.SourceDemo, Name: "A", Email: "a@college.edu"},
		{Source: models.SourceDemo, Name: "B", Email: "b@college.edu"},
		{Source: models.SourceNewsletter, Email: "c@college.edu"},
	} {
		if err := db.InsertLead(ctx, l); err != nil {
			t.Fatalf("InsertLead() error = %v", err)
		}
	}

	counts, err := db.CountLeadsBySource(ctx)
	if err != nil {
		t.Fatalf("CountLeadsBySource() error = %v", err)
	}
	if counts[models.SourceDemo] != 2 || counts[models.SourceNewsletter] != 1 {
		t.Errorf("CountLeadsBySource() = %v", counts)
	}
}
