package validator

import (
	"strings"
	"testing"

	"parkease/pkg/logger"
	"parkease/pkg/model"
)

func newTestValidator() *SlotValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewSlotValidator(log)
}

func TestValidateCreate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		create  model.SlotCreate
		wantErr bool
		field   string
	}{
		{
			name:   "valid minimal",
			create: model.SlotCreate{SlotNumber: "A12"},
		},
		{
			name: "valid with status and description",
			create: model.SlotCreate{
				SlotNumber:  "B-01",
				Status:      model.SlotAvailable,
				Description: "covered spot near the entrance",
			},
		},
		{
			name:    "missing slot number",
			create:  model.SlotCreate{},
			wantErr: true,
			field:   "SlotNumber",
		},
		{
			name:    "slot number too long",
			create:  model.SlotCreate{SlotNumber: strings.Repeat("A", 21)},
			wantErr: true,
			field:   "SlotNumber",
		},
		{
			name:    "invalid status",
			create:  model.SlotCreate{SlotNumber: "A12", Status: "busy"},
			wantErr: true,
			field:   "Status",
		},
		{
			name: "description too long",
			create: model.SlotCreate{
				SlotNumber:  "A12",
				Description: strings.Repeat("x", 501),
			},
			wantErr: true,
			field:   "Description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(&tt.create)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			verrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}

			found := false
			for _, ve := range verrs {
				if ve.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.field, verrs)
			}
		})
	}
}
