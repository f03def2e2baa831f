package fasta

import (
	"strconv"
	"strings"
)

const (
	headerMarker = '>'
	unnamedID    = "Unnamed sequence "
)

// CRLF, CR and LF all end a line
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

type parseState uint8

const (
	noOpenRecord parseState = iota
	openRecord
)

// parser walks the document line by line. A header line always opens a
// new record, a body line opens an unnamed one when nothing is open yet.
type parser struct {
	idx   *Index
	opts  Options
	state parseState

	id   string
	body strings.Builder
	// 1-based counter of the unnamed records seen so far
	unnamed int
}

func newParser(idx *Index, options Options) *parser {
	return &parser{
		idx:     idx,
		opts:    options,
		state:   noOpenRecord,
		unnamed: 1,
	}
}

func (p *parser) parse(raw string) {

	for _, line := range strings.Split(lineEndings.Replace(raw), "\n") {

		if len(line) > 0 && line[0] == headerMarker {
			p.flush()
			p.open(p.headerID(line[1:]))
			continue
		}
		p.bodyLine(line)
	}
	p.flush()
}

func (p *parser) headerID(header string) string {
	id := strings.TrimSpace(header)
	if id == "" {
		return p.nextUnnamed()
	}
	return id
}

func (p *parser) nextUnnamed() string {
	id := unnamedID + strconv.Itoa(p.unnamed)
	p.unnamed++
	return id
}

func (p *parser) bodyLine(line string) {

	if p.state == noOpenRecord {
		// blank lines before the first record do not create one
		if strings.TrimSpace(line) == "" {
			return
		}
		p.open(p.nextUnnamed())
	}
	if !p.opts.KeepWhitespace {
		line = strings.TrimSpace(line)
	}
	p.body.WriteString(line)
}

func (p *parser) open(id string) {
	p.id = id
	p.body.Reset()
	p.state = openRecord
}

func (p *parser) flush() {
	if p.state != openRecord {
		return
	}
	p.idx.put(p.id, p.body.String())
	p.id = ""
	p.body.Reset()
	p.state = noOpenRecord
}
