package linkedin

import (
	"testing"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/agents/tracker"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

func newConvertingAgent() *Agent {
	return &Agent{
		sanitizer: bluemonday.UGCPolicy(),
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func TestDescriptionMarkdown(t *testing.T) {
	a := newConvertingAgent()

	html := `<div><h2>About the role</h2><p>We build <strong>Go</strong> services.</p>
<ul><li>Design APIs</li><li>Own deployments</li></ul>
<script>alert("tracking")</script></div>`

	md, err := a.descriptionMarkdown(html)
	require.NoError(t, err)

	assert.Contains(t, md, "About the role")
	assert.Contains(t, md, "**Go**")
	assert.Contains(t, md, "- Design APIs")
	// Script content is stripped by sanitization.
	assert.NotContains(t, md, "alert")
	assert.NotContains(t, md, "<script>")
}

func TestJobIDFromURL(t *testing.T) {
	m := jobIDRe.FindStringSubmatch("https://www.linkedin.com/jobs/view/4012345678/?refId=abc")
	require.NotNil(t, m)
	assert.Equal(t, "4012345678", m[1])

	assert.Nil(t, jobIDRe.FindStringSubmatch("https://www.linkedin.com/jobs/search/"))
}

func TestTrackerStatus(t *testing.T) {
	assert.Equal(t, tracker.StatusOK, trackerStatus(models.StatusApplied))
	assert.Equal(t, tracker.StatusSkipped, trackerStatus(models.StatusSkipped))
	assert.Equal(t, tracker.StatusSkipped, trackerStatus(models.StatusExternal))
	assert.Equal(t, tracker.StatusFailed, trackerStatus(models.StatusFailed))
}
