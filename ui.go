package main

const uiHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>DNS Propagation Checker</title>
    <script defer src="https://cdn.jsdelivr.net/npm/alpinejs@3.x.x/dist/cdn.min.js"></script>
    <style>
        * { box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            max-width: 960px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        h1 { color: #333; margin-bottom: 5px; }
        .subtitle { color: #666; margin-bottom: 20px; }
        .card {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .form-row { display: flex; gap: 10px; flex-wrap: wrap; margin-bottom: 15px; }
        .form-group { display: flex; flex-direction: column; flex: 1; min-width: 150px; }
        label { font-size: 12px; color: #666; margin-bottom: 4px; font-weight: 500; }
        input, select { padding: 10px; border: 1px solid #ddd; border-radius: 4px; font-size: 14px; }
        input:focus, select:focus { outline: none; border-color: #059669; }
        button {
            background: #059669;
            color: white;
            border: none;
            padding: 12px 24px;
            border-radius: 4px;
            cursor: pointer;
            font-size: 14px;
            font-weight: 500;
        }
        button:hover { background: #047857; }
        button:disabled { background: #ccc; cursor: not-allowed; }
        .btn-secondary { background: #6c757d; }
        .progress { height: 8px; background: #eee; border-radius: 4px; overflow: hidden; margin: 10px 0; }
        .progress-bar { height: 100%; background: #059669; transition: width .2s; }
        .stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 10px; margin: 15px 0; }
        .stat { background: #f8f9fa; border-radius: 4px; padding: 10px; text-align: center; }
        .stat-value { font-size: 22px; font-weight: 600; }
        .stat-label { font-size: 12px; color: #666; }
        .label { font-size: 18px; font-weight: 600; }
        .section-title {
            font-size: 14px;
            font-weight: 600;
            color: #333;
            margin: 15px 0 8px;
            padding-bottom: 5px;
            border-bottom: 1px solid #eee;
        }
        .row {
            display: flex;
            align-items: center;
            padding: 8px 10px;
            background: #f8f9fa;
            border-radius: 4px;
            font-size: 13px;
            margin-bottom: 6px;
        }
        .flag { width: 28px; }
        .name { font-weight: 500; min-width: 150px; }
        .server { color: #666; min-width: 130px; }
        .time { min-width: 70px; color: #666; }
        .status { min-width: 110px; font-weight: 500; }
        .propagated { color: #28a745; }
        .not-propagated { color: #d39e00; }
        .failed { color: #dc3545; }
        .records { font-family: monospace; font-size: 12px; color: #666; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
        .error { background: #f8d7da; color: #721c24; padding: 10px; border-radius: 4px; margin-bottom: 15px; }
        .meta { font-size: 12px; color: #666; margin-top: 10px; }
    </style>
</head>
<body>
    <h1>DNS Propagation Checker</h1>
    <p class="subtitle">Check how a DNS record resolves from public resolvers around the world</p>

    <div x-data="dnsChecker()" class="card">
        <form @submit.prevent="runCheck">
            <div class="form-row">
                <div class="form-group" style="flex: 2;">
                    <label>Domain</label>
                    <input type="text" x-model="domain" placeholder="example.com" required>
                </div>
                <div class="form-group" style="flex: 0.7;">
                    <label>Record Type</label>
                    <select x-model="recordType">
                        <option value="A">A</option>
                        <option value="AAAA">AAAA</option>
                        <option value="MX">MX</option>
                        <option value="TXT">TXT</option>
                        <option value="NS">NS</option>
                        <option value="CNAME">CNAME</option>
                    </select>
                </div>
                <div class="form-group" style="flex: 1; flex-direction: row; align-items: flex-end; gap: 10px;">
                    <button type="submit" :disabled="loading" x-text="loading ? 'Checking...' : 'Check Propagation'"></button>
                    <a x-show="summary" :href="summary ? '/checks/' + summary.session_id + '/csv' : '#'">
                        <button type="button" class="btn-secondary">Export CSV</button>
                    </a>
                </div>
            </div>
        </form>

        <template x-if="error">
            <div class="error" x-text="error"></div>
        </template>

        <template x-if="loading || summary">
            <div>
                <div class="progress"><div class="progress-bar" :style="'width: ' + percent + '%'"></div></div>

                <template x-if="summary">
                    <div>
                        <div class="label" x-text="summary.status_label + ' (' + summary.percent_propagated + '%)'"></div>
                        <div class="stats">
                            <div class="stat"><div class="stat-value" x-text="summary.propagated"></div><div class="stat-label">Propagated</div></div>
                            <div class="stat"><div class="stat-value" x-text="summary.not_propagated"></div><div class="stat-label">Not propagated</div></div>
                            <div class="stat"><div class="stat-value" x-text="summary.errors"></div><div class="stat-label">Errors</div></div>
                            <div class="stat"><div class="stat-value" x-text="summary.avg_response_time_ms + 'ms'"></div><div class="stat-label">Avg response</div></div>
                        </div>
                        <div class="meta" x-show="summary.distinct_values.length">
                            Distinct values: <span x-text="summary.distinct_values.join(', ')"></span>
                        </div>
                    </div>
                </template>

                <template x-for="group in regions()" :key="group.region">
                    <div>
                        <div class="section-title" x-text="group.region"></div>
                        <template x-for="r in group.results" :key="r.location">
                            <div class="row">
                                <span class="flag" x-text="r.flag"></span>
                                <span class="name" x-text="r.location"></span>
                                <span class="server" x-text="r.server"></span>
                                <span class="status" :class="statusClass(r.status)" x-text="r.status"></span>
                                <span class="time" x-text="r.status === 'error' ? '-' : r.response_time_ms + 'ms'"></span>
                                <span class="records" :title="r.error || recordText(r)" x-text="r.error || recordText(r) || '-'"></span>
                            </div>
                        </template>
                    </div>
                </template>

                <div class="meta" x-show="summary">
                    Checked at: <span x-text="summary ? summary.timestamp : ''"></span>
                </div>
            </div>
        </template>
    </div>

    <script>
        function dnsChecker() {
            return {
                domain: '',
                recordType: 'A',
                loading: false,
                error: null,
                percent: 0,
                session: null,
                results: [],
                summary: null,
                eventSource: null,

                runCheck() {
                    if (this.eventSource) {
                        this.eventSource.close();
                    }
                    this.loading = true;
                    this.error = null;
                    this.percent = 0;
                    this.session = null;
                    this.results = [];
                    this.summary = null;

                    const params = new URLSearchParams({ domain: this.domain, type: this.recordType });
                    const es = new EventSource('/check/stream?' + params);
                    this.eventSource = es;

                    es.addEventListener('progress', (event) => {
                        const p = JSON.parse(event.data);
                        if (this.session && p.session_id !== this.session) {
                            return;
                        }
                        this.session = p.session_id;
                        this.percent = p.percent;
                        this.results.push(p.result);
                    });

                    es.addEventListener('summary', (event) => {
                        this.summary = JSON.parse(event.data);
                        this.results = this.summary.results;
                        this.percent = 100;
                        this.finish(es);
                    });

                    es.addEventListener('error', (event) => {
                        if (event.data) {
                            this.error = JSON.parse(event.data).error;
                        } else if (this.loading) {
                            this.error = 'Connection lost';
                        }
                        this.finish(es);
                    });
                },

                finish(es) {
                    es.close();
                    if (this.eventSource === es) {
                        this.eventSource = null;
                        this.loading = false;
                    }
                },

                regions() {
                    const groups = [];
                    const index = {};
                    for (const r of this.results) {
                        if (!(r.region in index)) {
                            index[r.region] = groups.length;
                            groups.push({ region: r.region, results: [] });
                        }
                        groups[index[r.region]].results.push(r);
                    }
                    return groups;
                },

                recordText(r) {
                    return (r.records || []).map(rec => rec.data).join('; ');
                },

                statusClass(status) {
                    return status === 'propagated' ? 'propagated' : status === 'not-propagated' ? 'not-propagated' : 'failed';
                }
            }
        }
    </script>
</body>
</html>`
