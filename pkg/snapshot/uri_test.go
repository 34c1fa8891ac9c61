package snapshot

import "testing"

func TestParseRedisURI(t *testing.T) {
	tests := []struct {
		uri     string
		addr    string
		db      int
		key     string
		wantErr bool
	}{
		{"redis://localhost:6379/0", "localhost:6379", 0, DefaultRedisKey, false},
		{"redis://cache:6380/2?key=site:plugins", "cache:6380", 2, "site:plugins", false},
		{"redis://:secret@cache:6379/1?key=k&dial_timeout=3s", "cache:6379", 1, "k", false},
		{"redis://cache:6379/notanumber", "", 0, "", true},
	}

	for _, tt := range tests {
		opts, key, err := parseRedisURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRedisURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if opts.Addr != tt.addr || opts.DB != tt.db || key != tt.key {
			t.Errorf("parseRedisURI(%q) = %s db %d key %q, want %s db %d key %q",
				tt.uri, opts.Addr, opts.DB, key, tt.addr, tt.db, tt.key)
		}
	}
}

func TestParseMongoURI(t *testing.T) {
	tests := []struct {
		uri      string
		wantURI  string
		database string
		id       string
	}{
		{"mongodb://localhost:27017", "mongodb://localhost:27017", DefaultMongoDatabase, DefaultMongoSnapshot},
		{"mongodb://localhost:27017/site?snapshot=main", "mongodb://localhost:27017/site", "site", "main"},
		{"mongodb+srv://user:pw@cluster.example.net/?snapshot=x&retryWrites=true", "mongodb+srv://user:pw@cluster.example.net/?retryWrites=true", DefaultMongoDatabase, "x"},
	}

	for _, tt := range tests {
		got, err := parseMongoURI(tt.uri)
		if err != nil {
			t.Errorf("parseMongoURI(%q) error: %v", tt.uri, err)
			continue
		}
		if got.uri != tt.wantURI || got.database != tt.database || got.id != tt.id {
			t.Errorf("parseMongoURI(%q) = %+v", tt.uri, got)
		}
	}
}
