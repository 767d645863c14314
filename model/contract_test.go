package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestValidStatus(t *testing.T) {
	valid := []string{StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusArchived}
	for _, s := range valid {
		if !ValidStatus(s) {
			t.Errorf("Expected %q to be a valid status", s)
		}
	}

	invalid := []string{"", "draft", "SIGNED", "COMPLETED"}
	for _, s := range invalid {
		if ValidStatus(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestValidRole(t *testing.T) {
	valid := []string{RoleAdmin, RoleUser, RoleApprover}
	for _, r := range valid {
		if !ValidRole(r) {
			t.Errorf("Expected %q to be a valid role", r)
		}
	}

	invalid := []string{"", "admin", "ROOT"}
	for _, r := range invalid {
		if ValidRole(r) {
			t.Errorf("Expected %q to be invalid", r)
		}
	}
}

func TestUserPasswordNotSerialized(t *testing.T) {
	user := &User{
		ID:        1,
		Username:  "alice",
		Password:  "$2a$10$somethinghashed",
		Role:      RoleAdmin,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Failed to marshal user: %v", err)
	}
	if strings.Contains(string(data), "somethinghashed") {
		t.Error("Password hash must not appear in serialized user")
	}
	if !strings.Contains(string(data), "alice") {
		t.Error("Expected username in serialized user")
	}
}

func TestContractSerialization(t *testing.T) {
	contract := &Contract{
		ID:         1,
		ContractNo: "CONTRACT-001",
		Title:      "Sales agreement",
		PartyA:     "Company A",
		PartyB:     "Company B",
		Amount:     100.50,
		Status:     StatusDraft,
		Attachments: []Attachment{
			{ID: 1, FileName: "report.pdf", FilePath: "uploads/report-1.pdf", MimeType: "application/pdf", FileSize: 1024, ContractID: 1},
		},
	}

	data, err := json.Marshal(contract)
	if err != nil {
		t.Fatalf("Failed to marshal contract: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded["contractNo"] != "CONTRACT-001" {
		t.Errorf("Expected contractNo CONTRACT-001, got %v", decoded["contractNo"])
	}
	attachments, ok := decoded["attachments"].([]any)
	if !ok || len(attachments) != 1 {
		t.Fatalf("Expected 1 attachment, got %v", decoded["attachments"])
	}
}
