package website

import (
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/templates"
)

const perfmonNumRecords = 50

type PerfmonData struct {
	templates.BaseData

	NumStored int
	Records   []templates.PerfRecord
}

func Perfmon(c *RequestContext) ResponseData {
	var perfData *perf.PerfStorage
	{
		b := c.Perf.StartBlock("PERF", "Requesting perf data")
		if c.PerfCollector != nil {
			perfData = c.PerfCollector.GetPerfCopy()
		} else {
			perfData = &perf.PerfStorage{}
		}
		b.End()
	}

	tmpl := PerfmonData{
		BaseData:  getBaseData(c, "Request timings"),
		NumStored: len(perfData.AllRequests),
	}
	{
		b := c.Perf.StartBlock("PERF", "Processing perf data")
		for _, record := range perfData.Slowest(perfmonNumRecords) {
			tmpl.Records = append(tmpl.Records, templates.PerfRecordToTemplate(record))
		}
		b.End()
	}

	var res ResponseData
	res.MustWriteTemplate("admin_perf.html", tmpl, c.Perf)
	return res
}
