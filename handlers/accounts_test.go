package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"route-traffic-api/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testUserID uint = 7

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

// asUser stands in for RequireAuth.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func accountsRouter(db *gorm.DB) *gin.Engine {
	history := NewHistoryHandler(db)
	favorites := NewFavoritesHandler(db)

	r := gin.New()
	r.GET("/anon/history", history.List)
	g := r.Group("/", asUser(testUserID))
	g.GET("/history", history.List)
	g.POST("/history", history.Create)
	g.DELETE("/history/:id", history.Delete)
	g.GET("/favorites", favorites.List)
	g.POST("/favorites", favorites.Create)
	g.DELETE("/favorites/:id", favorites.Delete)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func historyRows(times ...time.Time) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "origin", "destination", "traffic_level", "traffic_label", "created_at"})
	for i, ts := range times {
		rows.AddRow(int64(i+1), int64(testUserID), "Kadıköy", "Ümraniye", 1, "Orta", ts)
	}
	return rows
}

func TestHistoryListScopedToUser(t *testing.T) {
	db, mock := newMockDB(t)
	newest := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "search_history" WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`)).
		WithArgs(testUserID, DefaultLimit+1).
		WillReturnRows(historyRows(newest, newest.Add(-time.Hour)))

	w := serve(accountsRouter(db), http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []struct {
			ID        uint      `json:"id"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
		HasMore bool `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].CreatedAt.After(resp.Data[1].CreatedAt))
	assert.False(t, resp.HasMore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListBeforeCursor(t *testing.T) {
	db, mock := newMockDB(t)
	t1 := time.Date(2024, 12, 2, 7, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "search_history" WHERE user_id = $1 AND created_at < $2 ORDER BY created_at DESC LIMIT $3`)).
		WithArgs(testUserID, sqlmock.AnyArg(), 3).
		WillReturnRows(historyRows(t1, t1.Add(-time.Hour), t1.Add(-2*time.Hour)))

	w := serve(accountsRouter(db), http.MethodGet, "/history?limit=2&before=2024-12-02T08:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CursorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.HasMore)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, t1.Add(-time.Hour).Format(time.RFC3339Nano), resp.NextCursor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRequiresUser(t *testing.T) {
	db, mock := newMockDB(t)

	w := serve(accountsRouter(db), http.MethodGet, "/anon/history", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryCreate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "search_history" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	body := `{"origin":"Kadıköy","destination":"Ümraniye","datetime":"2024-12-02 08:00:00","traffic_level":2,"speed_kmh":28}`
	w := serve(accountsRouter(db), http.MethodPost, "/history", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"traffic_label":"Çok"`)
	assert.Contains(t, w.Body.String(), `"id":42`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingOrForeignRow(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		table string
	}{
		{"history", "/history/5", "search_history"},
		{"favorite", "/favorites/5", "favorites"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			// a row owned by someone else matches nothing for this user
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "`+tt.table+`" WHERE id = $1 AND user_id = $2`)).
				WithArgs(5, testUserID).
				WillReturnResult(sqlmock.NewResult(0, 0))

			w := serve(accountsRouter(db), http.MethodDelete, tt.path, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteOwnRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "favorites" WHERE id = $1 AND user_id = $2`)).
		WithArgs(9, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := serve(accountsRouter(db), http.MethodDelete, "/favorites/9", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteInvalidID(t *testing.T) {
	db, mock := newMockDB(t)

	w := serve(accountsRouter(db), http.MethodDelete, "/history/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoritesList(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "favorites" WHERE user_id = $1 ORDER BY created_at DESC`)).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "origin", "destination"}).
			AddRow(int64(1), int64(testUserID), "Kadıköy", "Ümraniye"))

	w := serve(accountsRouter(db), http.MethodGet, "/favorites", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"origin":"Kadıköy"`)
	assert.NotContains(t, w.Body.String(), "user_id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoritesCreate(t *testing.T) {
	const body = `{"origin":"Kadıköy","destination":"Ümraniye","origin_lat":40.9982,"origin_lon":29.0643}`

	tests := []struct {
		name   string
		result func(*sqlmock.ExpectedQuery)
		want   int
	}{
		{
			name: "created",
			result: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
			},
			want: http.StatusCreated,
		},
		{
			name: "duplicate route",
			result: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
			},
			want: http.StatusConflict,
		},
		{
			name: "other database error",
			result: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnError(errors.New("connection reset by peer"))
			},
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			q := mock.ExpectQuery(`INSERT INTO "favorites" .* RETURNING "id"`)
			tt.result(q)

			w := serve(accountsRouter(db), http.MethodPost, "/favorites", body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(gorm.ErrRecordNotFound))
}
