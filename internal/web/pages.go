package web

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/pable/go-match-metrics/internal/model"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1d1d1f}
table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #ccc;padding:.3rem .6rem;text-align:right}
th{background:#f3f3f3}td.l{text-align:left}.warn{color:#a15c00}.err{color:#b00020}`

// liveReload reloads the page when another client ingests a match.
const liveReload = `<script>
(function(){
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function(ev){
    try { if (JSON.parse(ev.data).type === "match_ingested") location.reload(); } catch(e) {}
  };
})();
</script>`

func esc(s string) string { return templ.EscapeString(s) }

// pageWriter keeps the first write error so page bodies read top to bottom.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *pageWriter) render(ctx context.Context, c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.printf("<!DOCTYPE html><html lang=\"es\"><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>",
			esc(title), pageStyle)
		p.render(ctx, body)
		p.printf("%s</body></html>", liveReload)
		return p.err
	})
}

// DashboardPage lists the catalog and offers the upload form.
func DashboardPage(matches []model.MatchSummary, team string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.printf("<h1>Partidos</h1>")
		p.printf(`<form method="post" action="/api/matches" enctype="multipart/form-data">`+
			`<input type="file" name="file" accept=".xlsx,.csv" required> `+
			`<input name="team" value="%s"> <input name="opponent" placeholder="Rival"> `+
			`<input name="date" type="date"> <button type="submit">Subir</button></form>`, esc(team))
		if len(matches) == 0 {
			p.printf("<p>No hay partidos.</p>")
			return p.err
		}
		p.printf("<table><tr><th>Fecha</th><th>Equipo</th><th>Rival</th><th>Eventos</th><th>Archivo</th></tr>")
		for _, m := range matches {
			p.printf(`<tr><td><a href="/matches/%s">%s</a></td><td class="l">%s</td><td class="l">%s</td><td>%d</td><td class="l">%s</td></tr>`,
				url.PathEscape(m.Hash), esc(m.MatchDate), esc(m.Team), esc(m.Opponent), m.EventCount, esc(m.FileName))
		}
		p.printf("</table>")
		return p.err
	})
	return layout("Partidos", body)
}

// MatchPage renders the tabular views of a match report.
func MatchPage(r *model.MatchReport) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		m := r.Match
		p.printf("<p><a href=\"/\">&larr; Partidos</a></p><h1>%s vs %s</h1><p>%s &middot; periodo %s",
			esc(r.Query.Team), esc(m.Opponent), esc(m.MatchDate), esc(r.Query.Period.String()))
		if label := r.TimeRanges.Label(r.Query.Period); label != "" {
			p.printf(" (%s)", esc(label))
		}
		p.printf("</p>")
		p.printf(`<form method="get"><input name="team" value="%s"> <input name="period" value="%s" placeholder="all, 1, 2, 2h"> <button>Ver</button></form>`,
			esc(r.Query.Team), esc(r.Query.Period.String()))

		for _, msg := range r.Warnings {
			p.printf("<p class=\"warn\">%s</p>", esc(msg))
		}
		views := make([]string, 0, len(r.Errors))
		for v := range r.Errors {
			views = append(views, v)
		}
		sort.Strings(views)
		for _, v := range views {
			p.printf("<p class=\"err\">%s</p>", esc(r.Errors[v]))
		}

		p.printf("<h2>Resumen</h2><table><tr><th>Pases</th><th>Precisión</th><th>Córners</th><th>Tiros</th><th>Goles</th></tr>")
		shots, goals := 0, 0
		if r.Shots != nil {
			shots, goals = r.Shots.Summary.Total, r.Shots.Summary.Goals
		}
		p.printf("<tr><td>%d/%d</td><td>%.0f%%</td><td>%d - %d</td><td>%d</td><td>%d</td></tr></table>",
			r.Passes.Completed, r.Passes.Total(), r.Passes.Precision(), r.Corners.For, r.Corners.Against, shots, goals)

		if n := r.Network; n != nil && len(n.Edges) > 0 {
			p.printf("<h2>Red de pases (%d)</h2><table><tr><th>Pasador</th><th>Receptor</th><th>Pases</th></tr>", n.PassCount)
			for _, e := range n.Edges {
				p.printf("<tr><td class=\"l\">%s</td><td class=\"l\">%s</td><td>%d</td></tr>", esc(string(e.Passer)), esc(string(e.Receiver)), e.Count)
			}
			p.printf("</table>")
		}
		p.render(ctx, rankingTable("Tiros", rankingOf(r.Shots)))
		if r.Fouls != nil {
			p.render(ctx, rankingTable("Faltas", r.Fouls.ByPlayer))
		}
		if r.Recoveries != nil {
			p.render(ctx, rankingTable("Recuperaciones", r.Recoveries.ByPlayer))
		}
		if len(r.Substitutes) > 0 {
			subs := make([]string, len(r.Substitutes))
			for i, s := range r.Substitutes {
				subs[i] = esc(string(s))
			}
			p.printf("<p>Suplentes: %s</p>", strings.Join(subs, ", "))
		}
		return p.err
	})
	return layout(fmt.Sprintf("%s vs %s", r.Query.Team, r.Match.Opponent), body)
}

func rankingOf(s *model.ShotMap) []model.PlayerCount {
	if s == nil {
		return nil
	}
	return s.ByPlayer
}

func rankingTable(title string, counts []model.PlayerCount) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(counts) == 0 {
			return nil
		}
		p := &pageWriter{w: w}
		p.printf("<h2>%s</h2><table><tr><th>Jugador</th><th>Total</th></tr>", esc(title))
		for _, c := range counts {
			p.printf("<tr><td class=\"l\">%s</td><td>%d</td></tr>", esc(string(c.Player)), c.Count)
		}
		p.printf("</table>")
		return p.err
	})
}
