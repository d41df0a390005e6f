package sqlite

import (
	"context"
	"testing"

	"storeplane/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockAudit(t *testing.T) (*AuditLog, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &AuditLog{conn: conn}, mock
}

func TestAuditLog_Append(t *testing.T) {
	a, mock := newMockAudit(t)

	storeID := "store-abc12345"
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(&storeID, store.AuditCreate, "name=Shop A engine=woocommerce", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := a.Append(context.Background(), &storeID, store.AuditCreate, "name=Shop A engine=woocommerce")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAuditLog_List_ClampsLimit(t *testing.T) {
	a, mock := newMockAudit(t)

	mock.ExpectQuery(`SELECT id, store_id, action, details, created_at FROM audit_log ORDER BY id DESC LIMIT \?`).
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "action", "details", "created_at"}))

	_, err := a.List(context.Background(), 10000)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
