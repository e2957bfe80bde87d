package statement

import (
	"fmt"
	"strings"
)

// assetCategoryField is the conventional position of the "Asset Category"
// column in Trades data rows, used to derive trade section keys.
const assetCategoryField = 1

// sectionState is the per-section state machine that groups tokenized lines
// into header+data blocks. A section is either waiting for its first header
// or accumulating data rows under the current one.
type sectionState struct {
	header  []string
	rows    [][]string
	counter int
}

// Assembler consumes tokenized lines in file order and publishes materialized
// tables under unique section keys. Each distinct section label runs its own
// state machine, so interleaved sections do not disturb each other.
type Assembler struct {
	states map[string]*sectionState
	order  []string

	sections map[string]*Table
	keys     []string
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		states:   make(map[string]*sectionState),
		sections: make(map[string]*Table),
	}
}

// Feed advances the state machine of the line's section. A recurring header
// finalizes the pending block first; data rows seen before any header are
// dropped. Row kinds other than Header and Data are ignored.
func (a *Assembler) Feed(ln RawLine) {
	st, ok := a.states[ln.Section]
	if !ok {
		st = &sectionState{}
		a.states[ln.Section] = st
		a.order = append(a.order, ln.Section)
	}

	switch ln.Kind {
	case RowKindHeader:
		if st.header != nil && len(st.rows) > 0 {
			a.finalize(ln.Section, st)
		}
		st.header = ln.Fields
		st.rows = nil
	case RowKindData:
		if st.header == nil {
			log.WithField("section", ln.Section).Debug("Dropping data row before any header")
			return
		}
		st.rows = append(st.rows, ln.Fields)
	}
}

// Finish finalizes all pending blocks and returns the section-key keyed
// tables together with the keys in publication order.
func (a *Assembler) Finish() (map[string]*Table, []string) {
	for _, section := range a.order {
		st := a.states[section]
		if st.header != nil && len(st.rows) > 0 {
			a.finalize(section, st)
		}
	}
	return a.sections, a.keys
}

// finalize assigns the pending block a section key, materializes it and
// resets the accumulated rows. The block counter advances whether or not
// materialization succeeds, so later blocks keep stable keys.
func (a *Assembler) finalize(section string, st *sectionState) {
	key := a.sectionKey(section, st)
	st.counter++

	tbl, err := NewTable(key, st.header, st.rows)
	if err != nil {
		log.WithError(err).WithField("section", key).Warn("Dropping section that could not be materialized")
		st.rows = nil
		return
	}

	a.sections[key] = tbl
	a.keys = append(a.keys, key)
	st.rows = nil
}

// sectionKey derives the key under which the pending block is published.
// Trades blocks are keyed by the asset category sniffed from the first data
// row, which naturally disambiguates the stock, option and bond sub-tables.
// Everything else falls back to counter-based disambiguation: the first block
// keeps the bare section name, later ones get a numeric suffix.
func (a *Assembler) sectionKey(section string, st *sectionState) string {
	if strings.HasPrefix(section, "Trades") && len(st.rows) > 0 {
		first := st.rows[0]
		if len(first) > assetCategoryField {
			if category := strings.TrimSpace(first[assetCategoryField]); category != "" {
				key := section + " " + category
				if _, taken := a.sections[key]; !taken {
					return key
				}
			}
		}
	}

	if st.counter == 0 {
		return section
	}
	return fmt.Sprintf("%s %d", section, st.counter)
}
