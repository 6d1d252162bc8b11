package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"semaphore/dashboard/internal/apiclient"
	"semaphore/dashboard/internal/attendance"
	"semaphore/dashboard/internal/jobs"
	"semaphore/dashboard/internal/report"
)

type fakeLoader struct {
	mu    sync.Mutex
	query report.Query
	err   error
}

func (f *fakeLoader) Load(_ context.Context, q report.Query) (report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = q
	if q.DepartmentID == "" {
		return report.Report{}, report.ErrMissingDepartment
	}
	if f.err != nil {
		return report.Report{}, f.err
	}
	courses := []attendance.CourseSummary{{
		CourseID:          "c1",
		CourseName:        "Algorithms",
		TotalStudents:     2,
		TotalSessions:     2,
		AverageAttendance: 67,
		Students: []attendance.StudentSummary{
			{StudentID: "s1", StudentName: "Ada Lovelace", PresentCount: 1, TotalCount: 2},
			{StudentID: "s2", StudentName: "Alan Turing", PresentCount: 1, TotalCount: 1},
		},
	}}
	return report.Report{
		DepartmentID: q.DepartmentID,
		GeneratedAt:  time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC),
		Courses:      courses,
		Details:      attendance.Details(courses),
	}, nil
}

func newTestServer(t *testing.T, loader *fakeLoader, snap *jobs.Snapshot) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	apiclient.NewMetrics(reg)
	server := NewServer(loader, snap, reg, nil)
	server.now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return payload["error"]
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, &fakeLoader{}, nil)

	resp, body := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, body)
	}

	resp, body = get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected metrics status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "dashboard_api_replayed_requests_total") {
		t.Fatalf("expected client metrics to be exposed, got %s", body)
	}
}

func TestSummaryPassesQuery(t *testing.T) {
	loader := &fakeLoader{}
	ts := newTestServer(t, loader, nil)

	resp, body := get(t, ts.URL+"/attendance/summary?departmentId=d1&courseId=c1&courseId=c2&searchTerm=ada&pageNumber=2&pageSize=50")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d %s", resp.StatusCode, body)
	}
	var payload struct {
		DepartmentID string                     `json:"departmentId"`
		Courses      []attendance.CourseSummary `json:"courses"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.DepartmentID != "d1" || len(payload.Courses) != 1 || payload.Courses[0].AverageAttendance != 67 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	loader.mu.Lock()
	q := loader.query
	loader.mu.Unlock()
	if len(q.CourseIDs) != 2 || q.CourseIDs[1] != "c2" || q.SearchTerm != "ada" || q.PageNumber != 2 || q.PageSize != 50 {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestDetails(t *testing.T) {
	ts := newTestServer(t, &fakeLoader{}, nil)

	resp, body := get(t, ts.URL+"/attendance/details?departmentId=d1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		Details []attendance.StudentDetail `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Details) != 2 || payload.Details[0].AttendancePercentage != 50 || payload.Details[1].AttendancePercentage != 100 {
		t.Fatalf("unexpected details %+v", payload.Details)
	}
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t, &fakeLoader{}, nil)

	resp, body := get(t, ts.URL+"/attendance/export?departmentId=d1&format=csv&detailed=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "detailed_attendance_2024-03-07.csv") {
		t.Fatalf("unexpected disposition %q", resp.Header.Get("Content-Disposition"))
	}
	if !strings.HasPrefix(string(body), "Course,StudentName,TotalClasses,AttendedClasses,AttendancePercentage") {
		t.Fatalf("unexpected csv %q", body)
	}
	if !strings.Contains(string(body), "Algorithms,Ada Lovelace,2,1,50%") {
		t.Fatalf("expected detail row, got %q", body)
	}
}

func TestExportRejectsBadParams(t *testing.T) {
	ts := newTestServer(t, &fakeLoader{}, nil)

	resp, body := get(t, ts.URL+"/attendance/export?departmentId=d1&format=pdf")
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, body) != "unsupported_format" {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
	resp, body = get(t, ts.URL+"/attendance/export?departmentId=d1&detailed=maybe")
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, body) != "invalid_request" {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
}

func TestReportErrors(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		err    error
		status int
		code   string
	}{
		{"missing department", "/attendance/summary", nil, http.StatusBadRequest, "missing_department"},
		{"bad page", "/attendance/summary?departmentId=d1&pageSize=ten", nil, http.StatusBadRequest, "invalid_request"},
		{"transport", "/attendance/summary?departmentId=d1", &apiclient.TransportError{Method: "GET", Path: "/attendance", Err: errors.New("dial")}, http.StatusGatewayTimeout, "upstream_unavailable"},
		{"unauthorized", "/attendance/details?departmentId=d1", &apiclient.HTTPError{StatusCode: http.StatusUnauthorized}, http.StatusBadGateway, "upstream_unauthorized"},
		{"no attendance", "/attendance/summary?departmentId=d1", report.ErrNoAttendance, http.StatusBadGateway, "attendance_unavailable"},
		{"other", "/attendance/summary?departmentId=d1", errors.New("boom"), http.StatusBadGateway, "upstream_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &fakeLoader{err: tc.err}, nil)
			resp, body := get(t, ts.URL+tc.url)
			if resp.StatusCode != tc.status || errorCode(t, body) != tc.code {
				t.Fatalf("expected %d %s, got %d %s", tc.status, tc.code, resp.StatusCode, body)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	loader := &fakeLoader{}
	snap := &jobs.Snapshot{}
	ts := newTestServer(t, loader, snap)

	resp, body := get(t, ts.URL+"/attendance/snapshot")
	if resp.StatusCode != http.StatusNotFound || errorCode(t, body) != "snapshot_unavailable" {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}

	if err := snap.Refresh(context.Background(), loader, report.Query{DepartmentID: "d1"}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	resp, body = get(t, ts.URL+"/attendance/snapshot")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"departmentId":"d1"`) || strings.Contains(string(body), "stale") {
		t.Fatalf("unexpected snapshot %d %s", resp.StatusCode, body)
	}

	loader.mu.Lock()
	loader.err = errors.New("backend down")
	loader.mu.Unlock()
	_ = snap.Refresh(context.Background(), loader, report.Query{DepartmentID: "d1"})
	resp, body = get(t, ts.URL+"/attendance/snapshot")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"stale":true`) {
		t.Fatalf("expected stale snapshot, got %d %s", resp.StatusCode, body)
	}
}
