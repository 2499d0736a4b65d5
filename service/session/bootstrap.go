package session

// bootstrapSource is the program the interpreter runs for the whole session
// lifetime. It keeps one persistent namespace, reads one JSON command record
// per stdin line on a dedicated thread, and interleaves command execution
// with idle-time work (GUI event pumping) on a 50ms poll. Expression-mode
// compilation is attempted first; statement mode is the fallback. Results
// and faults are delimited with the protocol sentinels.
const bootstrapSource = `
import json
import os
import sys
import threading
import traceback

try:
    import queue
except ImportError:
    import Queue as queue

_namespace = {'__name__': '__main__'}
_records = queue.Queue()
_pump_mode = os.environ.get('RUNCELL_GUI_PUMP', 'auto')
_pump_on = _pump_mode == 'always'


def _read_stdin():
    for line in sys.stdin:
        _records.put(line)
    _records.put(None)


def _pump_events():
    if not _pump_on or 'matplotlib' not in sys.modules:
        return
    try:
        from matplotlib import _pylab_helpers
        for manager in _pylab_helpers.Gcf.get_all_fig_managers():
            manager.canvas.flush_events()
    except Exception:
        pass


def _execute(record):
    global _pump_on
    source = json.loads(record['source'])
    filename = record.get('filename') or '<cell>'
    line = record.get('line') or 1
    if record.get('pump') and _pump_mode == 'auto':
        _pump_on = True
    padded = '\n' * (line - 1) + source
    try:
        code = compile(padded, filename, 'eval')
    except SyntaxError:
        code = compile(padded, filename, 'exec')
        exec(code, _namespace)
        return
    value = eval(code, _namespace)
    if value is not None:
        sys.stdout.write(repr(value) + '\n')
        sys.stdout.write('<<<TYPE:%s>>>\n' % type(value).__name__)


threading.Thread(target=_read_stdin, name='runcell-stdin', daemon=True).start()
sys.stdout.write('<<<READY>>>\n')
sys.stdout.flush()

while True:
    try:
        line = _records.get(timeout=0.05)
    except queue.Empty:
        _pump_events()
        continue
    if line is None:
        break
    line = line.strip()
    if not line:
        continue
    try:
        _execute(json.loads(line))
        sys.stdout.write('<<<SUCCESS>>>\n')
    except SystemExit:
        raise
    except BaseException:
        sys.stderr.write(traceback.format_exc())
        sys.stdout.write('<<<ERROR>>>\n')
    sys.stdout.flush()
    sys.stderr.flush()
`
