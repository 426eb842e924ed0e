package intent

import "testing"

func TestExtractURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/fetch https://example.com/a", "https://example.com/a"},
		{"看看这个 https://example.com/a，谢谢", "https://example.com/a"},
		{"check https://example.com/a.", "https://example.com/a"},
		{"(see https://example.com/a)", "https://example.com/a"},
		{"https://例子.com/path", ""},
		{"ftp://example.com/a", ""},
		{"no url here", ""},
		{"https://", ""},
	}
	for _, c := range cases {
		if got := ExtractURL(c.in); got != c.want {
			t.Errorf("ExtractURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractReadPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/read /tmp/notes.txt", "/tmp/notes.txt"},
		{"/tmp/notes.txt", "/tmp/notes.txt"},
		{"/home/user/a.md 这个文件", "/home/user/a.md"},
		{"读取 /var/log/app.log", "/var/log/app.log"},
		{"帮我读一下 /tmp/notes.txt", "/tmp/notes.txt"},
		{"帮我读一下吗", ""},
		{"please read /etc/hosts", "/etc/hosts"},
		{"read me a story", ""},
		{"open the file \"/opt/data/config.yaml\"", "/opt/data/config.yaml"},
		{"去读 https://example.com/a", ""},
		{"/exit", ""},
		{"今天心情不错", ""},
	}
	for _, c := range cases {
		if got := ExtractReadPath(c.in); got != c.want {
			t.Errorf("ExtractReadPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
