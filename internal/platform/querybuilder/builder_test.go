package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("COUNT(*)").
		From("matches").
		Where(Eq("home_or_away", "home"), In("result", []any{"win", "loss"})).
		OrderBy("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT COUNT(*) FROM matches WHERE home_or_away = $1 AND result IN ($2, $3) ORDER BY id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "home" || args[1] != "win" || args[2] != "loss" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("roster_entries").
		Columns("id", "display_name").
		Values("r1", "Alex Morgan").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO roster_entries (id, display_name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "r1" || args[1] != "Alex Morgan" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("profiles").
		Set("subs_status", "paid").
		SetExpr("updated_at", "NOW()").
		Where(Eq("uid", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE profiles SET subs_status = $1, updated_at = NOW() WHERE uid = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "paid" || args[1] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForUpdate(t *testing.T) {
	query, args, err := Select("id", "player_stats").
		From("matches").
		Where(Eq("id", "m1")).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select for update query: %v", err)
	}

	wantQuery := "SELECT id, player_stats FROM matches WHERE id = $1 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "m1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("matches").
		Where(Eq("id", "m1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM matches WHERE id = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "m1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}

func TestInsertModel(t *testing.T) {
	model := struct {
		UID  string `db:"uid"`
		Name string `db:"display_name"`
		Skip string `db:"-"`
	}{UID: "u1", Name: "Alex"}

	query, args, err := InsertModel("profiles", model, "ON CONFLICT (uid) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO profiles (uid, display_name) VALUES ($1, $2) ON CONFLICT (uid) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "u1" || args[1] != "Alex" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
