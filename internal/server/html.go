package server

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Smart Student Activity Monitor</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', system-ui, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            padding: 20px;
        }
        .container { max-width: 1400px; margin: 0 auto; }
        .header { text-align: center; color: white; margin-bottom: 30px; }
        .header h1 { font-size: 2.4rem; margin-bottom: 8px; }
        .tabs { display: flex; gap: 10px; justify-content: center; margin-bottom: 24px; }
        .tab-btn {
            padding: 12px 24px; background: white; border: none; border-radius: 12px;
            font-size: 1rem; font-weight: 600; cursor: pointer;
        }
        .tab-btn.active { background: #6366f1; color: white; }
        .tab-content { display: none; }
        .tab-content.active { display: block; }
        .stats-grid {
            display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 16px; margin-bottom: 24px;
        }
        .stat-card { background: white; border-radius: 16px; padding: 24px; }
        .stat-value { font-size: 2.2rem; font-weight: 800; color: #0f172a; }
        .stat-label { color: #64748b; font-size: 0.9rem; }
        .main-grid { display: grid; grid-template-columns: 2fr 1fr; gap: 16px; }
        .panel { background: white; border-radius: 16px; padding: 24px; }
        .panel h2 { margin-bottom: 16px; color: #0f172a; }
        .activity-item {
            padding: 14px; border-radius: 10px; background: #f8fafc;
            margin-bottom: 10px; border-left: 4px solid #6366f1;
        }
        .activity-item.unusual { border-left-color: #ef4444; background: #fef2f2; }
        .activity-name { font-weight: 600; color: #0f172a; }
        .activity-meta { font-size: 0.85rem; color: #64748b; margin-top: 4px; }
        .dist-row { margin-bottom: 12px; }
        .dist-label { display: flex; justify-content: space-between; font-size: 0.9rem; color: #334155; }
        .dist-track { background: #e2e8f0; border-radius: 8px; height: 8px; overflow: hidden; }
        .dist-fill { background: #6366f1; height: 100%; }
        .video-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(400px, 1fr)); gap: 16px; }
        .video-panel { background: white; border-radius: 16px; padding: 16px; }
        .video-panel img { width: 100%; border-radius: 12px; background: #000; min-height: 280px; }
        .btn-danger {
            width: 100%; padding: 12px; border: none; border-radius: 10px;
            background: #ef4444; color: white; font-weight: 600; cursor: pointer; margin-top: 16px;
        }
        .empty { text-align: center; color: #94a3b8; padding: 40px 10px; }
        @media (max-width: 968px) { .main-grid { grid-template-columns: 1fr; } }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎓 Smart Student Activity Monitor</h1>
            <p>AI-Powered Real-Time Analysis with Live Streaming</p>
        </div>

        <div class="tabs">
            <button class="tab-btn active" data-tab="dashboard">📊 Dashboard</button>
            <button class="tab-btn" data-tab="livestream">📹 Live Stream</button>
        </div>

        <div id="dashboard" class="tab-content active">
            <div class="stats-grid">
                <div class="stat-card"><div class="stat-value" id="totalSessions">0</div><div class="stat-label">Total Sessions</div></div>
                <div class="stat-card"><div class="stat-value" id="normalCount">0</div><div class="stat-label">Normal Activities</div></div>
                <div class="stat-card"><div class="stat-value" id="unusualCount">0</div><div class="stat-label">Unusual Activities</div></div>
                <div class="stat-card"><div class="stat-value" id="avgConfidence">0%</div><div class="stat-label">Avg Confidence</div></div>
            </div>
            <div class="main-grid">
                <div class="panel">
                    <h2>Recent Activities</h2>
                    <div id="activityList"><div class="empty">No activities yet</div></div>
                </div>
                <div class="panel">
                    <h2>Activity Distribution</h2>
                    <div id="distribution"><div class="empty">No data</div></div>
                    <button class="btn-danger" onclick="clearAllData()">🗑️ Clear All Data</button>
                </div>
            </div>
        </div>

        <div id="livestream" class="tab-content">
            <div class="video-grid" id="videoGrid"><div class="empty">No active streams</div></div>
        </div>
    </div>

    <script>
        let currentTab = 'dashboard';

        document.querySelectorAll('.tab-btn').forEach(btn => {
            btn.addEventListener('click', () => {
                currentTab = btn.dataset.tab;
                document.querySelectorAll('.tab-btn').forEach(b => b.classList.remove('active'));
                btn.classList.add('active');
                document.querySelectorAll('.tab-content').forEach(c => c.classList.remove('active'));
                document.getElementById(currentTab).classList.add('active');
                if (currentTab === 'dashboard') refreshData(); else loadStreams();
            });
        });

        async function loadStats() {
            const resp = await fetch('/api/stats');
            if (!resp.ok) return;
            const data = await resp.json();
            document.getElementById('totalSessions').textContent = data.total_sessions || 0;
            document.getElementById('unusualCount').textContent = data.unusual_count || 0;
            document.getElementById('normalCount').textContent =
                (data.total_sessions || 0) - (data.unusual_count || 0);
            document.getElementById('avgConfidence').textContent =
                data.average_confidence ? (data.average_confidence * 100).toFixed(0) + '%' : '0%';
            renderDistribution(data.activity_distribution || {});
        }

        async function loadActivities() {
            const resp = await fetch('/api/sessions?limit=50');
            if (!resp.ok) return;
            const data = await resp.json();
            const el = document.getElementById('activityList');
            if (!data.sessions.length) {
                el.innerHTML = '<div class="empty">No activities yet. Waiting for cameras...</div>';
                return;
            }
            el.innerHTML = data.sessions.map(s => {
                const cls = s.is_unusual ? 'activity-item unusual' : 'activity-item';
                const time = new Date(s.timestamp).toLocaleString();
                const objects = (s.objects_detected || []).join(', ');
                return '<div class="' + cls + '">' +
                    '<div class="activity-name">' + s.activity + '</div>' +
                    '<div class="activity-meta">Student: ' + s.student_id +
                    ' | Confidence: ' + (s.confidence_score * 100).toFixed(0) + '%' +
                    (objects ? ' | Objects: ' + objects : '') + '</div>' +
                    '<div class="activity-meta">🕐 ' + time + '</div></div>';
            }).join('');
        }

        function renderDistribution(dist) {
            const el = document.getElementById('distribution');
            const entries = Object.entries(dist);
            if (!entries.length) {
                el.innerHTML = '<div class="empty">No data</div>';
                return;
            }
            const total = entries.reduce((acc, [, n]) => acc + n, 0);
            el.innerHTML = entries.map(([activity, count]) => {
                const pct = (count / total * 100).toFixed(1);
                return '<div class="dist-row"><div class="dist-label"><span>' + activity +
                    '</span><span>' + count + ' (' + pct + '%)</span></div>' +
                    '<div class="dist-track"><div class="dist-fill" style="width:' + pct + '%"></div></div></div>';
            }).join('');
        }

        async function loadStreams() {
            const resp = await fetch('/api/active_streams');
            if (!resp.ok) return;
            const data = await resp.json();
            const el = document.getElementById('videoGrid');
            if (!data.streams.length) {
                el.innerHTML = '<div class="empty">No active streams. Waiting for cameras to connect...</div>';
                return;
            }
            el.innerHTML = data.streams.map(id =>
                '<div class="video-panel"><h2>📷 ' + id + '</h2>' +
                '<img src="/api/stream/' + id + '?t=' + Date.now() + '" alt="Live stream from ' + id + '"></div>'
            ).join('');
        }

        async function clearAllData() {
            if (!confirm('Clear all stored data? This cannot be undone.')) return;
            await fetch('/api/clear', { method: 'POST' });
            refreshData();
        }

        async function refreshData() {
            await Promise.all([loadStats(), loadActivities()]);
        }

        refreshData();
        setInterval(() => {
            if (currentTab === 'dashboard') refreshData();
        }, 5000);
    </script>
</body>
</html>
`
