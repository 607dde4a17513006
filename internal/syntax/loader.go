package syntax

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/ksyntax/internal/grammar"
)

// loader turns descriptors into definition data. One loader serves one
// top-level load; definitions it loads on the way are kept in batch so that
// definitions referencing each other find the partially built data instead
// of loading again.
type loader struct {
	repo  *Repository
	batch map[*Definition]*definitionData
}

func newLoader(r *Repository) *loader {
	return &loader{repo: r, batch: make(map[*Definition]*definitionData)}
}

func (l *loader) load(d *Definition) *definitionData {
	if data := d.data.Load(); data != nil {
		return data
	}
	if data, ok := l.batch[d]; ok {
		return data
	}

	data := newDefinitionData(d, d.Name())
	l.batch[d] = data

	g, err := l.repo.source.Load(d.Name())
	if err != nil {
		l.warn(data, nil, -1, fmt.Sprintf("cannot load grammar: %v", err))
		return data
	}

	l.build(data, g)
	if !data.isValid() {
		l.warn(data, nil, -1, "grammar has no contexts")
		return data
	}

	// phase 1: references by name
	l.resolveKeywordLists(data)
	l.resolveSwitches(data)

	// phase 2: include inlining
	for _, ctx := range data.contexts {
		l.resolveIncludes(ctx)
	}

	l.repo.logger.Debug("grammar loaded",
		zap.String("definition", data.name),
		zap.Int("contexts", len(data.contexts)),
		zap.Int("warnings", len(data.warnings)),
	)
	return data
}

func (l *loader) warn(data *definitionData, ctx *Context, rule int, msg string) {
	w := Warning{Definition: data.name, Rule: rule, Message: msg}
	if ctx != nil {
		w.Context = ctx.name
	}
	data.warnings = append(data.warnings, w)
	l.repo.logger.Warn(msg,
		zap.String("definition", w.Definition),
		zap.String("context", w.Context),
		zap.Int("rule", rule),
	)
}

func (l *loader) build(data *definitionData, g *grammar.Grammar) {
	data.caseSensitive = g.IsCaseSensitive()
	data.delimiters.remove(g.WeakDeliminator)
	data.delimiters.add(g.AdditionalDeliminator)
	data.indentationFolding = g.IndentationBasedFolding
	data.foldingIgnoreList = slices.Clone(g.FoldingIgnoreList)
	data.comments = g.Comments

	if g.Version != "" {
		if _, err := strconv.ParseFloat(g.Version, 64); err != nil {
			l.warn(data, nil, -1, fmt.Sprintf("invalid version %q", g.Version))
		}
	}

	for i := range g.Formats {
		l.buildFormat(data, &g.Formats[i])
	}

	for _, src := range g.KeywordLists {
		switch {
		case src.Name == "":
			l.warn(data, nil, -1, "keyword list without name ignored")
			continue
		case data.keywordLists[src.Name] != nil:
			l.warn(data, nil, -1, fmt.Sprintf("duplicate keyword list %q ignored", src.Name))
			continue
		}
		kl := newKeywordList(src.Name, src.Items, src.Includes, data.caseSensitive)
		kl.def = data
		data.keywordLists[src.Name] = kl
	}

	for i := range g.Contexts {
		src := &g.Contexts[i]
		switch {
		case src.Name == "":
			l.warn(data, nil, -1, fmt.Sprintf("context %d without name ignored", i))
			continue
		case data.contextsByName[src.Name] != nil:
			l.warn(data, nil, -1, fmt.Sprintf("duplicate context %q ignored", src.Name))
			continue
		}

		ctx := &Context{
			def:                data,
			index:              len(data.contexts),
			name:               src.Name,
			lineEnd:            parseContextSwitch(src.LineEndContext),
			lineEmpty:          parseContextSwitch(src.LineEmptyContext),
			fallthroughSwitch:  parseContextSwitch(src.FallthroughContext),
			fallsThrough:       src.Fallthrough || src.FallthroughContext != "",
			indentationFolding: data.indentationFolding && !src.NoIndentationBasedFolding,
			dynamic:            src.Dynamic,
		}
		ctx.attribute = l.lookupFormat(data, ctx, -1, src.Attribute)
		data.contexts = append(data.contexts, ctx)
		data.contextsByName[ctx.name] = ctx

		for j := range src.Rules {
			r := l.buildRule(data, ctx, j, &src.Rules[j])
			if r == nil {
				continue
			}
			ctx.rules = append(ctx.rules, r)
			data.rules = append(data.rules, ruleRef{context: ctx, index: j, rule: r})
		}
	}
}

func (l *loader) buildFormat(data *definitionData, src *grammar.Format) {
	switch {
	case src.Name == "":
		l.warn(data, nil, -1, "format without name ignored")
		return
	case data.formats[src.Name].IsValid():
		l.warn(data, nil, -1, fmt.Sprintf("duplicate format %q ignored", src.Name))
		return
	}

	style := TextStyleNormal
	if src.Style != "" {
		s, ok := ParseTextStyle(src.Style)
		if !ok {
			l.warn(data, nil, -1, fmt.Sprintf("format %q has unknown style %q", src.Name, src.Style))
		}
		style = s
	}

	f := Format{d: &formatData{
		id:         l.repo.newFormatID(),
		name:       src.Name,
		definition: data.name,
		style:      style,
		overrides: FormatOverrides{
			Color:              src.Color,
			SelectedColor:      src.SelColor,
			Background:         src.BackgroundColor,
			SelectedBackground: src.SelBackgroundColor,
			Bold:               src.Bold,
			Italic:             src.Italic,
			Underline:          src.Underline,
			StrikeThrough:      src.StrikeOut,
		},
		spellCheck: src.SpellChecking == nil || *src.SpellChecking,
	}}
	data.formats[src.Name] = f
	data.formatList = append(data.formatList, f)
}

// lookupFormat returns the named format. Unknown names are reported and
// yield the invalid Format, so the rule falls back to the context format.
func (l *loader) lookupFormat(data *definitionData, ctx *Context, rule int, name string) Format {
	if name == "" {
		return Format{}
	}
	f, ok := data.formats[name]
	if !ok {
		l.warn(data, ctx, rule, fmt.Sprintf("unknown attribute %q", name))
	}
	return f
}

func (l *loader) buildRule(data *definitionData, ctx *Context, index int, src *grammar.Rule) *Rule {
	kind, ok := ParseRuleKind(src.Kind)
	if !ok {
		l.warn(data, ctx, index, fmt.Sprintf("unknown rule kind %q", src.Kind))
		return nil
	}
	drop := func(msg string) *Rule {
		l.warn(data, ctx, index, fmt.Sprintf("%s rule dropped: %s", kind, msg))
		return nil
	}

	if kind == RuleIncludeRules {
		if src.Context == "" {
			return drop("no context to include")
		}
		contextName, definitionName, _ := strings.Cut(src.Context, "##")
		return &Rule{
			kind:   kind,
			column: -1,
			include: &includeTarget{
				contextName:    contextName,
				definitionName: definitionName,
				attribute:      src.IncludeAttrib,
			},
		}
	}

	r := &Rule{
		kind:          kind,
		column:        -1,
		firstNonSpace: src.FirstNonSpace,
		lookAhead:     src.LookAhead,
		dynamic:       src.Dynamic,
		insensitive:   src.Insensitive != nil && *src.Insensitive,
		context:       parseContextSwitch(src.Context),
	}
	if src.Column != nil {
		r.column = *src.Column
	}
	if r.dynamic && !kind.supportsDynamic() {
		l.warn(data, ctx, index, fmt.Sprintf("%s rule cannot be dynamic", kind))
		r.dynamic = false
	}
	r.attribute = l.lookupFormat(data, ctx, index, src.Attribute)

	if src.BeginRegion != "" {
		r.beginRegion = l.foldingRegion(data, src.BeginRegion, FoldingRegionBegin)
	}
	if src.EndRegion != "" {
		r.endRegion = l.foldingRegion(data, src.EndRegion, FoldingRegionEnd)
	}

	if kind.usesDelimiters() {
		r.delimiters = data.delimiters
		if src.WeakDeliminator != "" || src.AdditionalDeliminator != "" {
			r.delimiters = data.delimiters.clone()
			r.delimiters.remove(src.WeakDeliminator)
			r.delimiters.add(src.AdditionalDeliminator)
		}
	}

	switch kind {
	case RuleAnyChar:
		if src.String == "" {
			return drop("empty character set")
		}
		r.chars = []rune(src.String)

	case RuleDetectChar:
		if r.dynamic {
			idx, err := strconv.Atoi(strings.TrimPrefix(src.Char, "%"))
			if err != nil || idx < 1 || idx > 9 {
				return drop(fmt.Sprintf("invalid capture reference %q", src.Char))
			}
			r.captureIndex = idx
			break
		}
		c := []rune(src.Char)
		if len(c) == 0 {
			return drop("empty char")
		}
		r.chars = c[:1]

	case RuleDetect2Chars, RuleRangeDetect:
		c0, c1 := []rune(src.Char), []rune(src.Char1)
		if len(c0) == 0 || len(c1) == 0 {
			return drop("char and char1 are required")
		}
		r.chars = []rune{c0[0], c1[0]}

	case RuleLineContinue:
		c := []rune(src.Char)
		if len(c) == 0 {
			c = []rune{'\\'}
		}
		r.chars = c[:1]

	case RuleStringDetect:
		if src.String == "" {
			return drop("empty string")
		}
		r.text = []rune(src.String)
		if r.dynamic {
			r.pattern = src.String
		}

	case RuleWordDetect:
		if src.String == "" {
			return drop("empty string")
		}
		r.text = []rune(src.String)

	case RuleRegExpr:
		if src.String == "" {
			return drop("empty pattern")
		}
		re, err := newRegexRule(src.String, r.insensitive, src.Minimal, r.dynamic)
		if err != nil {
			return drop(fmt.Sprintf("invalid pattern %q: %v", src.String, err))
		}
		r.regex = re

	case RuleKeyword:
		kl := data.keywordLists[src.String]
		if kl == nil {
			return drop(fmt.Sprintf("unknown keyword list %q", src.String))
		}
		r.keywords = kl
		if src.Insensitive == nil {
			r.insensitive = !data.caseSensitive
		}
	}
	return r
}

func (l *loader) foldingRegion(data *definitionData, name string, typ FoldingRegionType) FoldingRegion {
	id := l.repo.foldingRegionID(data.name, name)
	if id == 0 {
		l.warn(data, nil, -1, fmt.Sprintf("too many folding regions, %q ignored", name))
		return FoldingRegion{}
	}
	data.foldingEnabled = true
	return NewFoldingRegion(id, typ)
}

func (l *loader) resolveKeywordLists(data *definitionData) {
	find := func(from *KeywordList, ref string) *KeywordList {
		listName, defName, _ := strings.Cut(ref, "##")
		owner := from.def
		if defName != "" && defName != owner.name {
			d := l.repo.DefinitionForName(defName)
			if d == nil {
				return nil
			}
			owner.addIncluded(d)
			owner = l.load(d)
		}
		return owner.keywordLists[listName]
	}
	missing := func(from *KeywordList, ref string) {
		l.warn(from.def, nil, -1, fmt.Sprintf("keyword list %q includes unknown list %q", from.name, ref))
	}

	names := make([]string, 0, len(data.keywordLists))
	for name := range data.keywordLists {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		data.keywordLists[name].resolveIncludes(find, missing)
	}
}

func (l *loader) resolveSwitches(data *definitionData) {
	for _, ctx := range data.contexts {
		l.resolveSwitch(ctx, -1, &ctx.lineEnd)
		l.resolveSwitch(ctx, -1, &ctx.lineEmpty)
		l.resolveSwitch(ctx, -1, &ctx.fallthroughSwitch)
		if ctx.fallsThrough && ctx.fallthroughSwitch.IsStay() {
			l.warn(data, ctx, -1, "fallthrough to #stay disabled")
			ctx.fallsThrough = false
		}
	}

	for _, ref := range data.rules {
		r := ref.rule
		if r.kind == RuleIncludeRules {
			continue
		}
		l.resolveSwitch(ref.context, ref.index, &r.context)
		if r.lookAhead && r.context.IsStay() {
			l.warn(data, ref.context, ref.index, "look-ahead rule without context switch, look-ahead ignored")
			r.lookAhead = false
		}
	}
}

// resolveSwitch binds the target of sw. An unknown target turns the whole
// switch into #stay.
func (l *loader) resolveSwitch(ctx *Context, rule int, sw *ContextSwitch) {
	if !sw.hasTarget() {
		return
	}
	target := l.lookupContext(ctx.def, sw.contextName, sw.definitionName)
	if target == nil {
		name := joinContextName(sw.contextName, sw.definitionName)
		l.warn(ctx.def, ctx, rule, fmt.Sprintf("unknown context %q, using #stay", name))
		*sw = ContextSwitch{}
		return
	}
	sw.context = target
}

// lookupContext finds a context by name relative to data. An empty context
// name means the initial context of the named definition.
func (l *loader) lookupContext(data *definitionData, contextName, definitionName string) *Context {
	owner := data
	if definitionName != "" && definitionName != data.name {
		d := l.repo.DefinitionForName(definitionName)
		if d == nil {
			return nil
		}
		data.addIncluded(d)
		owner = l.load(d)
	}
	if contextName == "" {
		return owner.initialContext()
	}
	return owner.contextsByName[contextName]
}

// resolveIncludes replaces every IncludeRules rule of ctx by the rules of
// its target, depth first. Missing, self and cyclic includes are dropped.
func (l *loader) resolveIncludes(ctx *Context) {
	if ctx.resolve != unresolved {
		return
	}
	ctx.resolve = resolving

	rules := make([]*Rule, 0, len(ctx.rules))
	for i, r := range ctx.rules {
		if r.kind != RuleIncludeRules {
			rules = append(rules, r)
			continue
		}

		inc := r.include
		target := l.lookupContext(ctx.def, inc.contextName, inc.definitionName)
		switch {
		case target == nil:
			l.warn(ctx.def, ctx, i, fmt.Sprintf("include of unknown context %q dropped", joinContextName(inc.contextName, inc.definitionName)))
			continue
		case target == ctx:
			l.warn(ctx.def, ctx, i, "context includes itself, include dropped")
			continue
		case target.resolve == resolving:
			l.warn(ctx.def, ctx, i, fmt.Sprintf("cyclic include of %q dropped", target.QualifiedName()))
			continue
		}

		l.resolveIncludes(target)
		if inc.attribute && target.attribute.IsValid() {
			ctx.attribute = target.attribute
		}
		rules = append(rules, target.rules...)
	}

	ctx.rules = rules
	ctx.hasDynamicRule = slices.ContainsFunc(rules, (*Rule).IsDynamic)
	ctx.resolve = resolved
}

func joinContextName(contextName, definitionName string) string {
	if definitionName == "" {
		return contextName
	}
	return contextName + "##" + definitionName
}
