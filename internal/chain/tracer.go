package chain

// storageWriteTracer reports every SSTORE of a transaction, including writes
// that leave the slot unchanged. Writes of reverted frames are discarded and
// a failed transaction reports none. Old is the slot value before the write.
const storageWriteTracer = `{
	frames: [[]],
	step: function(log, db) {
		if (log.op.toString() !== "SSTORE") {
			return;
		}
		var addr = log.contract.getAddress();
		var key = toWord(log.stack.peek(0).toString(16));
		this.frames[this.frames.length - 1].push({
			address: toHex(addr),
			key: toHex(key),
			old: toHex(db.getState(addr, key)),
			new: toHex(toWord(log.stack.peek(1).toString(16)))
		});
	},
	fault: function(log, db) {},
	enter: function(frame) {
		this.frames.push([]);
	},
	exit: function(res) {
		var writes = this.frames.pop();
		if (res.getError() !== undefined) {
			return;
		}
		var parent = this.frames[this.frames.length - 1];
		for (var i = 0; i < writes.length; i++) {
			parent.push(writes[i]);
		}
	},
	result: function(ctx, db) {
		if (ctx.error !== undefined) {
			return [];
		}
		return this.frames[0];
	}
}`
