package repository

import (
	"testing"

	"roombook/shared/dto"

	"github.com/stretchr/testify/assert"
)

type auditStamp struct {
	CreatedAt string `db:"created_at"`
}

type reservation struct {
	ID       string `db:"id"`
	RoomID   string `db:"room_id"`
	RoomName string `db:"room_name" table:"rooms" column:"name"`
	Note     string
	auditStamp
}

func (reservation) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = reservations.room_id"
}

func TestColumnSet(t *testing.T) {
	set := newColumnSet[reservation]("reservations")

	assert.Equal(t, []string{"id", "room_id", "created_at"}, set.insert)
	assert.Equal(t,
		"reservations.id, reservations.room_id, rooms.name AS room_name, reservations.created_at",
		set.selectList())
	assert.Equal(t, "reservations.id, rooms.name AS room_name", set.selectList("id", "name"))
	assert.Equal(t,
		"INSERT INTO reservations (id, room_id, created_at) VALUES (:id, :room_id, :created_at)",
		set.insertStatement("reservations"))
}

func TestOrderBy(t *testing.T) {
	repo := NewRepository[reservation]("reservation", "reservations", "id", nil, nil)

	assert.Equal(t, "JOIN rooms ON rooms.id = reservations.room_id", repo.join)

	tests := []struct {
		name   string
		params dto.QueryParams
		want   string
	}{
		{name: "none", params: dto.QueryParams{}, want: ""},
		{
			name:   "caller sort on own column",
			params: dto.QueryParams{SortBy: "created_at", SortDir: "desc"},
			want:   " ORDER BY reservations.created_at DESC",
		},
		{
			name:   "caller sort on joined alias",
			params: dto.QueryParams{SortBy: "room_name"},
			want:   " ORDER BY rooms.name ASC",
		},
		{
			name:   "unknown caller sort is ignored",
			params: dto.QueryParams{SortBy: "id; DROP TABLE reservations", SortDir: "ASC"},
			want:   "",
		},
		{
			name: "service order wins",
			params: dto.QueryParams{
				SortBy:  "created_at",
				OrderBy: []dto.Order{{Column: "reservations.room_id", Dir: dto.SortDirAsc}, {Column: "reservations.id", Dir: "desc"}},
			},
			want: " ORDER BY reservations.room_id ASC, reservations.id DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.orderBy(tt.params))
		})
	}
}

func TestPaginate(t *testing.T) {
	args := map[string]any{}
	assert.Equal(t, " LIMIT :limit OFFSET :offset", paginate(dto.QueryParams{Page: 3, Limit: 10}, args))
	assert.Equal(t, map[string]any{"limit": 10, "offset": 20}, args)

	args = map[string]any{}
	assert.Equal(t, " LIMIT :limit", paginate(dto.QueryParams{Limit: 5}, args))
	assert.Equal(t, map[string]any{"limit": 5}, args)

	assert.Equal(t, "", paginate(dto.QueryParams{Page: 2}, map[string]any{}))
}
