package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"semaphore/dashboard/internal/apiclient"
	"semaphore/dashboard/internal/result"
	"semaphore/dashboard/internal/session"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
	auth   string
}

func newTestServices(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Services, *session.Store, *[]recorded) {
	t.Helper()
	var calls []recorded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	store := session.NewStore(session.NewMemoryBackend())
	hc := &http.Client{Transport: &http.Transport{}, Timeout: 5 * time.Second}
	t.Cleanup(hc.CloseIdleConnections)
	client := apiclient.NewClient(server.URL, store,
		apiclient.WithHTTPClient(hc),
		apiclient.WithPublicEndpoints(PublicEndpoints...),
	)
	return New(client, store, nil), store, &calls
}

func TestLoginPersistsSession(t *testing.T) {
	svc, store, calls := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"},"tokens":{"accessToken":"a1","refreshToken":"r1"}}`))
	})
	ctx := context.Background()

	res := svc.Auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	if !res.Success() {
		t.Fatalf("login failed: %+v", res.Err())
	}
	if res.Value().User.DisplayName() != "Ada Lovelace" {
		t.Fatalf("unexpected user %+v", res.Value().User)
	}
	got := (*calls)[0]
	if got.method != http.MethodPost || got.path != PathLogin || got.auth != "" {
		t.Fatalf("unexpected login call %+v", got)
	}
	if got.body["email"] != "ada@example.com" || got.body["password"] != "secret1" {
		t.Fatalf("unexpected login body %v", got.body)
	}

	tokens, ok := store.Read(ctx)
	if !ok || tokens.AccessToken != "a1" || tokens.RefreshToken != "r1" {
		t.Fatalf("tokens not stored: %+v", tokens)
	}
	profile := svc.Auth.Profile(ctx)
	if !profile.Success() || profile.Value().ID != "u1" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if res := svc.Auth.Logout(ctx); !res.Success() {
		t.Fatalf("logout failed: %+v", res.Err())
	}
	if _, ok := store.Read(ctx); ok {
		t.Fatalf("expected tokens cleared")
	}
	profile = svc.Auth.Profile(ctx)
	if profile.Success() || profile.Err().Message != session.ErrNoSession.Error() {
		t.Fatalf("expected no session, got %+v", profile)
	}
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	svc, _, calls := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call to %s", r.URL.Path)
	})

	res := svc.Auth.Login(context.Background(), LoginRequest{Email: "nope", Password: "123"})
	if res.Success() || res.Err().Code != result.CodeValidation {
		t.Fatalf("expected validation failure, got %+v", res.Err())
	}
	var details map[string]string
	if err := json.Unmarshal(res.Err().Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details["email"] == "" || details["password"] == "" {
		t.Fatalf("expected email and password messages, got %v", details)
	}
	if len(*calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(*calls))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"user":{"username":"ada"}}`))
	})
	ctx := context.Background()

	bad := svc.Auth.Register(ctx, RegisterRequest{
		FirstName: "Ada", LastName: " ", Username: "ada",
		Email: "ada@example.com", Password: "short", PhoneNumber: "12345",
	})
	if bad.Success() {
		t.Fatalf("expected validation failure")
	}
	var details map[string]string
	_ = json.Unmarshal(bad.Err().Details, &details)
	for _, field := range []string{"lastName", "password", "phoneNumber"} {
		if details[field] == "" {
			t.Fatalf("expected message for %s, got %v", field, details)
		}
	}

	ok := svc.Auth.Register(ctx, RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Username: "ada",
		Email: "ada@example.com", Password: "longenough", PhoneNumber: "+44 20 7946 0958",
	})
	if !ok.Success() {
		t.Fatalf("register failed: %+v", ok.Err())
	}
	if !ok.Value().Tokens.Empty() {
		t.Fatalf("expected no tokens from registration")
	}
}

func TestLoginRejectedReturnsStatusCode(t *testing.T) {
	var refreshes atomic.Int32
	svc, _, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathRefreshToken {
			refreshes.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	res := svc.Auth.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "wrongpass"})
	if res.Success() {
		t.Fatalf("expected failure")
	}
	if res.Err().Code != "401" || res.Err().Message != "Invalid credentials" {
		t.Fatalf("unexpected error %+v", res.Err())
	}
	if refreshes.Load() != 0 {
		t.Fatalf("login rejection must not trigger a refresh")
	}
}

func TestCoursesUnwrapNamedField(t *testing.T) {
	svc, store, calls := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"courses":[{"id":"c1","title":"Algorithms","code":"CS201","creditUnits":3}],"metadata":{"totalCount":1}}`))
	})
	_ = store.SaveTokens(context.Background(), session.Tokens{AccessToken: "a1", RefreshToken: "r1"})

	res := svc.Courses.ListByDepartment(context.Background(), "d 1")
	if !res.Success() {
		t.Fatalf("list courses: %+v", res.Err())
	}
	if len(res.Value()) != 1 || res.Value()[0].Title != "Algorithms" {
		t.Fatalf("unexpected courses %+v", res.Value())
	}
	got := (*calls)[0]
	if got.path != "/departments/d 1/courses" || got.auth != "Bearer a1" {
		t.Fatalf("unexpected call %+v", got)
	}
}

func TestAttendanceListDecodesReports(t *testing.T) {
	svc, _, calls := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reports":[
			{"studentId":"s1","courseId":"c1","status":"Present","recordedAt":"2024-03-04T09:15:00"},
			{"studentId":"s2","courseId":"c1","status":"Absent","recordedAt":"2024-03-04T09:15:00Z"}
		],"metadata":{"currentPage":1,"totalPages":3,"pageSize":2,"totalCount":6,"hasNext":true}}`))
	})

	res := svc.Attendance.List(context.Background(), ListParams{
		PageNumber: 1,
		PageSize:   PageSizeAll,
		SearchTerm: "ada",
		Filters:    map[string]string{FilterCourseID: "c1"},
	})
	if !res.Success() {
		t.Fatalf("list attendance: %+v", res.Err())
	}
	page := res.Value()
	if len(page.Items) != 2 || page.Metadata.TotalPages != 3 || !page.Metadata.HasNext {
		t.Fatalf("unexpected page %+v", page)
	}
	first := page.Items[0].RecordedAt
	if first.Location() != time.Local || first.Hour() != 9 || first.Day() != 4 {
		t.Fatalf("expected zone-less timestamp read as local time, got %v", first.Time)
	}
	if page.Items[1].RecordedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", page.Items[1].RecordedAt.Time)
	}

	query := (*calls)[0].query
	for _, part := range []string{"courseId=c1", "pageNumber=1", "pageSize=1000", "searchTerm=ada"} {
		if !strings.Contains(query, part) {
			t.Fatalf("query %q missing %q", query, part)
		}
	}
}

func TestCreateAndDelete(t *testing.T) {
	svc, _, calls := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte("Deleted"))
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"f9","name":"Engineering","code":"ENG"}`))
		}
	})
	ctx := context.Background()

	created := svc.Faculties.Create(ctx, FacultyRequest{Name: "Engineering", Code: "ENG"})
	if !created.Success() || created.Value().ID != "f9" {
		t.Fatalf("unexpected create result %+v", created)
	}
	if res := svc.Faculties.Create(ctx, FacultyRequest{Name: "", Code: "X"}); res.Success() {
		t.Fatalf("expected validation failure for blank name")
	}
	if res := svc.ClassSchedules.Delete(ctx, "42"); !res.Success() {
		t.Fatalf("delete failed: %+v", res.Err())
	}
	if res := svc.Enrollments.Delete(ctx, "s1", "c1"); !res.Success() {
		t.Fatalf("delete enrollment failed: %+v", res.Err())
	}

	if len(*calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(*calls))
	}
	if got := (*calls)[1]; got.method != http.MethodDelete || got.path != "/class-schedules/42" {
		t.Fatalf("unexpected delete call %+v", got)
	}
	if got := (*calls)[2]; got.path != "/enrollments/s1/c1" {
		t.Fatalf("unexpected enrollment call %+v", got)
	}
}

func TestScheduleRequestValidation(t *testing.T) {
	svc, _, calls := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"s1","dayOfWeek":"Monday","startTime":"09:00","endTime":"11:00"}`))
	})
	ctx := context.Background()

	bad := svc.ClassSchedules.Create(ctx, ClassScheduleRequest{CourseID: "c1", ClassroomID: "r1", DayOfWeek: "Funday", StartTime: "9am", EndTime: "11:00"})
	if bad.Success() || bad.Err().Code != result.CodeValidation {
		t.Fatalf("expected validation failure, got %+v", bad)
	}
	good := svc.ClassSchedules.Update(ctx, "s1", ClassScheduleRequest{CourseID: "c1", ClassroomID: "r1", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "11:00"})
	if !good.Success() || good.Value().DayOfWeek != "Monday" {
		t.Fatalf("unexpected update result %+v", good)
	}
	if len(*calls) != 1 || (*calls)[0].method != http.MethodPut {
		t.Fatalf("unexpected calls %+v", *calls)
	}
}

func TestTransportFailureIsEnveloped(t *testing.T) {
	store := session.NewStore(session.NewMemoryBackend())
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	svc := New(apiclient.NewClient(addr, store), store, nil)
	res := svc.Levels.List(context.Background())
	if res.Success() || res.Err().Code != result.CodeTransport {
		t.Fatalf("expected transport error, got %+v", res.Err())
	}
}

func TestPageUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		items int
		total int
	}{
		{"bare array", `[{"id":"1"},{"id":"2"}]`, 2, 2},
		{"items", `{"items":[{"id":"1"}],"metadata":{"totalCount":9}}`, 1, 9},
		{"named", `{"students":[{"id":"1"},{"id":"2"},{"id":"3"}],"metadata":{"totalCount":3}}`, 3, 3},
		{"empty object", `{}`, 0, 0},
		{"null", `null`, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var page Page[Faculty]
			if err := json.Unmarshal([]byte(tc.body), &page); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(page.Items) != tc.items || page.Metadata.TotalCount != tc.total {
				t.Fatalf("expected %d items / %d total, got %+v", tc.items, tc.total, page)
			}
		})
	}
}

func TestListParamsValues(t *testing.T) {
	v := ListParams{PageNumber: 2, PageSize: 25, Filters: map[string]string{"departmentId": "d1", "empty": ""}}.Values()
	if v.Get("pageNumber") != "2" || v.Get("pageSize") != "25" || v.Get("departmentId") != "d1" {
		t.Fatalf("unexpected values %v", v)
	}
	if v.Has("searchTerm") || v.Has("empty") {
		t.Fatalf("zero values must be omitted: %v", v)
	}
	if got := (ListParams{PageSize: PageSizeAll}).Values().Get("pageSize"); got != "1000" {
		t.Fatalf("expected all page size of 1000, got %q", got)
	}
}
