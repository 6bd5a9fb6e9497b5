package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/secondbrain/internal/model"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", `"2025-03-01T10:30:00+02:00"`, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), false},
		{"calendar date", `"2025-03-01"`, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty string", `""`, time.Time{}, false},
		{"null", `null`, time.Time{}, false},
		{"not a date", `"next week"`, time.Time{}, true},
		{"not a string", `20250301`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %v", d.Time)
		})
	}
}

func TestUpdateTaskRequest_Input(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, r UpdateTaskRequest)
	}{
		{
			name: "omitted fields stay unset",
			body: `{"completed": true}`,
			check: func(t *testing.T, r UpdateTaskRequest) {
				in := r.Input()
				require.NotNil(t, in.Completed)
				assert.True(t, *in.Completed)
				assert.Nil(t, in.Title)
				assert.False(t, in.Description.Set)
				assert.False(t, in.DueDate.Set)
			},
		},
		{
			name: "null clears",
			body: `{"description": null, "dueDate": null}`,
			check: func(t *testing.T, r UpdateTaskRequest) {
				in := r.Input()
				assert.Equal(t, model.Null[string](), in.Description)
				assert.Equal(t, model.Null[time.Time](), in.DueDate)
			},
		},
		{
			name: "empty due date clears",
			body: `{"dueDate": ""}`,
			check: func(t *testing.T, r UpdateTaskRequest) {
				assert.Equal(t, model.Null[time.Time](), r.Input().DueDate)
			},
		},
		{
			name: "due date set",
			body: `{"dueDate": "2025-03-01"}`,
			check: func(t *testing.T, r UpdateTaskRequest) {
				due := r.Input().DueDate
				require.True(t, due.Set)
				assert.False(t, due.Null)
				assert.True(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Equal(due.Value))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r UpdateTaskRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			tt.check(t, r)
		})
	}
}

func TestCreateTaskRequest_Input(t *testing.T) {
	var r CreateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Pay rent","dueDate":""}`), &r))

	in := r.Input()
	assert.Equal(t, "Pay rent", in.Title)
	assert.Nil(t, in.DueDate)
	assert.Nil(t, in.Description)
}

func TestToTaskResponse_Overdue(t *testing.T) {
	now := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	open := &model.Task{ID: "t1", Title: "Pay rent", DueDate: &past}
	done := &model.Task{ID: "t2", Title: "Pay rent", DueDate: &past, Completed: true}

	assert.True(t, ToTaskResponse(open, now).Overdue)
	assert.False(t, ToTaskResponse(done, now).Overdue)

	raw, err := json.Marshal(ToTaskResponse(open, now))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"overdue":true`)
	assert.Contains(t, string(raw), `"title":"Pay rent"`)

	assert.NotNil(t, ToTaskResponses(nil, now))
}
