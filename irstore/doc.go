// Package irstore provides multichannel room impulse responses for every
// (transmitter, receiver array, channel) triple of a geometry layout.
//
// Two backends implement [Store]: [SimulatedStore] renders responses with a
// room simulator, and [MeasuredStore] cuts a fixed window out of recorded
// WAV files named "<speaker>_<receiver>_<channel>.wav" after the recording
// file ids of the layout. Responses of one array are grouped into an
// [ArrayRecord]; a record is usable only when every channel is present.
//
// Datasets are persisted as one NumPy .npz file per channel in the tree
//
//	tx_<i>/rx_<j>/ir_<channel:06>.npz
//
// with the arrays "ir", "position_rx", "position_tx" and optionally
// "ch_idx". [BuildDataset] writes such a tree from any Store, [Dataset]
// reads it back and [Reshape] rewrites it with different position metadata.
package irstore
