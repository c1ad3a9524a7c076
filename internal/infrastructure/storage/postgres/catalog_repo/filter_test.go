package catalog_repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorbook/internal/core/apperror"
	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/core/id"
	"vendorbook/internal/domain"
	"vendorbook/internal/domain/filter"
)

func businessCtx(businessID id.ID) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:     "u1",
		BusinessID: businessID.String(),
		Roles:      []string{appctx.RoleOwner},
	})
}

func testRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", "test", []string{"id", "business_id", "name", "col1"}, func() any { return nil })
}

func TestListQuery_Filters(t *testing.T) {
	biz := id.New()
	ctx := businessCtx(biz)
	repo := testRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "gte",
			item:     filter.Item{Field: "col1", Operator: filter.GreaterOrEqual, Value: 10},
			wantSQL:  "SELECT id, business_id, name, col1 FROM test_table WHERE business_id = $1 AND deletion_mark = $2 AND col1 >= $3",
			wantArgs: []any{biz.String(), false, 10},
		},
		{
			name:     "lte",
			item:     filter.Item{Field: "col1", Operator: filter.LessOrEqual, Value: 5},
			wantSQL:  "SELECT id, business_id, name, col1 FROM test_table WHERE business_id = $1 AND deletion_mark = $2 AND col1 <= $3",
			wantArgs: []any{biz.String(), false, 5},
		},
		{
			name:     "contains",
			item:     filter.Item{Field: "name", Operator: filter.Contains, Value: "cone"},
			wantSQL:  "SELECT id, business_id, name, col1 FROM test_table WHERE business_id = $1 AND deletion_mark = $2 AND name ILIKE $3",
			wantArgs: []any{biz.String(), false, "%cone%"},
		},
		{
			name:     "null",
			item:     filter.Item{Field: "col1", Operator: filter.IsNull},
			wantSQL:  "SELECT id, business_id, name, col1 FROM test_table WHERE business_id = $1 AND deletion_mark = $2 AND col1 IS NULL",
			wantArgs: []any{biz.String(), false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.ListQuery(ctx, domain.ListFilter{Filters: []filter.Item{tt.item}})
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestListQuery_SearchAndDeleted(t *testing.T) {
	biz := id.New()
	q, err := testRepo().ListQuery(businessCtx(biz), domain.ListFilter{Search: "kulfi", IncludeDeleted: true})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, business_id, name, col1 FROM test_table WHERE business_id = $1 AND name ILIKE $2", sql)
	assert.Equal(t, []any{biz.String(), "%kulfi%"}, args)
}

func TestListQuery_Rejects(t *testing.T) {
	repo := testRepo()

	_, err := repo.ListQuery(businessCtx(id.New()), domain.ListFilter{
		Filters: []filter.Item{{Field: "password", Operator: filter.Equal, Value: "x"}},
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = repo.ListQuery(businessCtx(id.New()), domain.ListFilter{
		Filters: []filter.Item{{Field: "col1", Operator: "regex", Value: "x"}},
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = repo.ListQuery(context.Background(), domain.ListFilter{})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestParseOrderBy(t *testing.T) {
	repo := testRepo()

	got, err := repo.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "name ASC", got)

	got, err = repo.parseOrderBy("-col1")
	require.NoError(t, err)
	assert.Equal(t, "col1 DESC", got)

	_, err = repo.parseOrderBy("name; DROP TABLE items")
	assert.True(t, apperror.IsValidation(err))
}

func TestSoldArrays(t *testing.T) {
	a, b, c := id.New(), id.New(), id.New()
	ids, qtys := soldArrays(map[id.ID]int64{a: 3, b: 0, c: 7})

	require.Len(t, ids, 2)
	for i, itemID := range ids {
		switch itemID {
		case a:
			assert.Equal(t, int64(3), qtys[i])
		case c:
			assert.Equal(t, int64(7), qtys[i])
		default:
			t.Fatalf("unexpected id %s", itemID)
		}
	}
	assert.Less(t, ids[0].String(), ids[1].String())
}
