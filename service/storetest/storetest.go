// Package storetest checks that a service.Store implementation behaves the
// way the services expect.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/service"
)

// Run exercises every repository method against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) service.Store) {
	t.Run("Contracts", func(t *testing.T) { testContracts(t, newStore(t)) })
	t.Run("ContractVersion", func(t *testing.T) { testContractVersion(t, newStore(t)) })
	t.Run("ContractTypes", func(t *testing.T) { testContractTypes(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

func testContracts(t *testing.T, store service.Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	contracts := []*model.Contract{
		{ID: "c1", ContractTypeID: "t1", ClientID: "client-1", LawyerID: "lawyer-1", Status: model.StatusPending, CreatedAt: base},
		{ID: "c2", ContractTypeID: "t1", ClientID: "client-1", LawyerID: "lawyer-2", Status: model.StatusSigned, CreatedAt: base.Add(time.Hour)},
		{ID: "c3", ContractTypeID: "t1", ClientID: "client-2", LawyerID: "lawyer-1", Status: model.StatusPending, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, c := range contracts {
		c.Version = 1
		c.ClientSigned = true
		c.ContractData = map[string]any{"employerName": "Acme"}
		c.UpdatedAt = c.CreatedAt
		if err := store.CreateContract(ctx, c); err != nil {
			t.Fatalf("CreateContract(%s): %v", c.ID, err)
		}
	}

	got, err := store.GetContract(ctx, "c1")
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	if got.ClientID != "client-1" || got.Status != model.StatusPending || !got.ClientSigned {
		t.Errorf("Unexpected contract %+v", got)
	}
	if got.ContractData["employerName"] != "Acme" {
		t.Errorf("Expected contract data to round trip, got %v", got.ContractData)
	}

	if _, err := store.GetContract(ctx, "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	tests := []struct {
		name   string
		filter service.ContractFilter
		want   []string
	}{
		{"by client", service.ContractFilter{ClientID: "client-1"}, []string{"c2", "c1"}},
		{"by lawyer and status", service.ContractFilter{LawyerID: "lawyer-1", Status: model.StatusPending}, []string{"c3", "c1"}},
		{"by status", service.ContractFilter{Status: model.StatusSigned}, []string{"c2"}},
		{"no match", service.ContractFilter{ClientID: "nobody"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.ListContracts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListContracts: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("Expected %d contracts, got %d", len(tt.want), len(list))
			}
			for i, id := range tt.want {
				if list[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, list[i].ID)
				}
			}
		})
	}
}

func testContractVersion(t *testing.T, store service.Store) {
	ctx := context.Background()
	c := &model.Contract{
		ID:        "v1",
		ClientID:  "client-1",
		LawyerID:  "lawyer-1",
		Status:    model.StatusPending,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := store.CreateContract(ctx, c); err != nil {
		t.Fatalf("CreateContract: %v", err)
	}

	first, _ := store.GetContract(ctx, "v1")
	second, _ := store.GetContract(ctx, "v1")

	first.Status = model.StatusVerified
	if err := store.UpdateContract(ctx, first); err != nil {
		t.Fatalf("UpdateContract: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("Expected version 2 after update, got %d", first.Version)
	}

	second.Status = model.StatusRejected
	second.RejectionReason = model.String("stale")
	if err := store.UpdateContract(ctx, second); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("Expected ErrConflict for stale write, got %v", err)
	}

	stored, _ := store.GetContract(ctx, "v1")
	if stored.Status != model.StatusVerified || stored.RejectionReason != nil {
		t.Errorf("Stale write must not change the record, got %+v", stored)
	}
	if stored.Version != 2 {
		t.Errorf("Expected stored version 2, got %d", stored.Version)
	}

	missing := &model.Contract{ID: "missing", Version: 1}
	if err := store.UpdateContract(ctx, missing); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing contract, got %v", err)
	}
}

func testContractTypes(t *testing.T, store service.Store) {
	ctx := context.Background()
	if _, err := service.SeedContractTypes(ctx, store); err != nil {
		t.Fatalf("SeedContractTypes: %v", err)
	}

	types, err := store.ListContractTypes(ctx)
	if err != nil {
		t.Fatalf("ListContractTypes: %v", err)
	}
	if len(types) != 6 {
		t.Fatalf("Expected 6 contract types, got %d", len(types))
	}
	if types[0].Name != "Employment Contract" {
		t.Errorf("Expected types sorted by name, first was %s", types[0].Name)
	}

	lease, err := store.GetContractType(ctx, types[1].ID)
	if err != nil {
		t.Fatalf("GetContractType: %v", err)
	}
	if lease.Name != "Lease Agreement" || len(lease.RequiredFields) != 10 {
		t.Errorf("Unexpected lease type %+v", lease)
	}

	// Reseeding keeps ids stable and does not duplicate
	if _, err := service.SeedContractTypes(ctx, store); err != nil {
		t.Fatalf("SeedContractTypes again: %v", err)
	}
	again, _ := store.ListContractTypes(ctx)
	if len(again) != 6 || again[1].ID != lease.ID {
		t.Errorf("Expected reseed to keep 6 types with stable ids")
	}

	if _, err := store.GetContractType(ctx, "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func testUsers(t *testing.T, store service.Store) {
	ctx := context.Background()
	users := []*model.User{
		{ID: "u1", Name: "Zoe Client", Email: "zoe@example.com", Role: model.RoleClient},
		{ID: "u2", Name: "Bob Lawyer", Email: "bob@example.com", Role: model.RoleLawyer, Specialization: "Corporate"},
		{ID: "u3", Name: "Ann Lawyer", Email: "ann@example.com", Role: model.RoleLawyer, Specialization: "Family"},
	}
	for _, u := range users {
		u.PasswordHash = "hash"
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s): %v", u.ID, err)
		}
	}

	dup := &model.User{ID: "u4", Name: "Dup", Email: "zoe@example.com", Role: model.RoleClient}
	if err := store.CreateUser(ctx, dup); !errors.Is(err, service.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "u2" || got.PasswordHash != "hash" {
		t.Errorf("Unexpected user %+v", got)
	}

	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	lawyers, err := store.ListUsersByRole(ctx, model.RoleLawyer)
	if err != nil {
		t.Fatalf("ListUsersByRole: %v", err)
	}
	if len(lawyers) != 2 || lawyers[0].Name != "Ann Lawyer" {
		t.Errorf("Expected 2 lawyers sorted by name, got %+v", lawyers)
	}
}
