package serverapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

func newAPIServer(t *testing.T, status int, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Body = nil
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second), rec
}

func TestCreateLicense(t *testing.T) {
	c, rec := newAPIServer(t, http.StatusOK, `{"success":true,"message":"License created","license":"KEY123"}`)

	key, err := c.CreateLicense(context.Background(), "tok", 30)
	require.NoError(t, err)
	assert.Equal(t, "KEY123", key)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/licenses/createLicense", rec.Path)
	assert.Equal(t, "tok", rec.Body["authToken"])
	assert.Equal(t, float64(30), rec.Body["duration"])
}

func TestDeleteLicenseSendsBody(t *testing.T) {
	c, rec := newAPIServer(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, c.DeleteLicense(context.Background(), "tok", "KEY123"))
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/licenses/delete", rec.Path)
	assert.Equal(t, "KEY123", rec.Body["license"])
}

func TestCountLicenses(t *testing.T) {
	c, rec := newAPIServer(t, http.StatusOK, `{"success":true,"licenses":42}`)

	n, err := c.CountLicenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Nil(t, rec.Body)
}

func TestUserCalls(t *testing.T) {
	c, rec := newAPIServer(t, http.StatusOK, `{"success":true,"token":"T","rank":3}`)

	token, err := c.Login(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.Equal(t, "/users/login", rec.Path)

	rank, err := c.UserRank(context.Background(), "T")
	require.NoError(t, err)
	assert.Equal(t, 3, rank)
	assert.Equal(t, "T", rec.Body["token"])
}

func TestRefusal(t *testing.T) {
	c, _ := newAPIServer(t, http.StatusOK, `{"success":false,"message":"License already claimed"}`)

	err := c.ClaimLicense(context.Background(), "KEY", "owner")
	require.Error(t, err)
	assert.True(t, IsRefused(err))
	assert.Equal(t, "License already claimed", err.Error())
}

func TestServerError(t *testing.T) {
	c, _ := newAPIServer(t, http.StatusBadRequest, `{"success":false,"error":"Missing required fields"}`)

	_, err := c.LicenseActive(context.Background(), "")
	require.Error(t, err)
	assert.False(t, IsRefused(err))
	assert.Contains(t, err.Error(), "Missing required fields")
}
