package bootstrap

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/starter/internal/errors"
)

// Shell is the static HTML page the application is mounted into.
type Shell struct {
	source  []byte
	mountID string
}

// Page is what one render of the shell fills in.
type Page struct {
	Lang  string
	Class string

	// Title replaces the <title> text when non-empty.
	Title string

	// Body is rendered HTML placed inside the mount container.
	Body string

	// MountAttrs are set on the mount container, e.g. data-session.
	MountAttrs map[string]string

	// Scripts are appended to <body> as deferred script tags.
	Scripts []string
}

// ParseShell reads an HTML page and checks that it contains an element with
// id mountID. A missing container is the fatal startup error E100.
func ParseShell(r io.Reader, mountID string) (*Shell, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(errors.CodeShellUnreadable).Wrap(err)
	}
	s := &Shell{source: source, mountID: mountID}
	if _, _, err := s.parse(); err != nil {
		return nil, err
	}
	return s, nil
}

// MountID returns the id of the mount container.
func (s *Shell) MountID() string { return s.mountID }

func (s *Shell) parse() (root, mount *html.Node, err error) {
	root, err = html.Parse(bytes.NewReader(s.source))
	if err != nil {
		return nil, nil, errors.New(errors.CodeShellUnreadable).Wrap(err)
	}
	mount = findByID(root, s.mountID)
	if mount == nil {
		return nil, nil, errors.New(errors.CodeMountMissing).
			WithDetailf("no element with id=%q in the HTML shell", s.mountID).
			WithSuggestion(`Add <div id="` + s.mountID + `"></div> to the page body`)
	}
	return root, mount, nil
}

// Render writes the page. Each call works on a fresh parse of the shell, so
// concurrent renders do not share nodes.
func (s *Shell) Render(w io.Writer, p Page) error {
	root, mount, err := s.parse()
	if err != nil {
		return err
	}

	if htmlEl := findAtom(root, atom.Html); htmlEl != nil {
		setAttr(htmlEl, "lang", p.Lang)
		if p.Class == "" {
			removeAttr(htmlEl, "class")
		} else {
			setAttr(htmlEl, "class", p.Class)
		}
	}

	if p.Title != "" {
		if title := findAtom(root, atom.Title); title != nil {
			for c := title.FirstChild; c != nil; c = title.FirstChild {
				title.RemoveChild(c)
			}
			title.AppendChild(&html.Node{Type: html.TextNode, Data: p.Title})
		}
	}

	keys := make([]string, 0, len(p.MountAttrs))
	for k := range p.MountAttrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		setAttr(mount, k, p.MountAttrs[k])
	}

	for c := mount.FirstChild; c != nil; c = mount.FirstChild {
		mount.RemoveChild(c)
	}
	if p.Body != "" {
		mount.AppendChild(&html.Node{Type: html.RawNode, Data: p.Body})
	}

	if body := findAtom(root, atom.Body); body != nil {
		for _, src := range p.Scripts {
			body.AppendChild(&html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.Script,
				Data:     "script",
				Attr: []html.Attribute{
					{Key: "src", Val: src},
					{Key: "defer", Val: ""},
				},
			})
		}
	}

	return html.Render(w, root)
}

// String renders p into a string.
func (s *Shell) String(p Page) (string, error) {
	var b strings.Builder
	if err := s.Render(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
